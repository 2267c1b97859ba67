package vision

import "fmt"

const (
	Temperature = 0
	MaxTokens   = 500
)

// SystemPrompt pins the answer format to the eight VehicleInfo fields.
var SystemPrompt = fmt.Sprintf(`You are a vehicle identification expert. Answer ONLY with a valid JSON object in this format:
{
  "make": "...",
  "model": "...",
  "type": "...",
  "year": "...",
  "color": "...",
  "condition": "...",
  "estimated_value": "...",
  "description": "..."
}
If something cannot be determined from the image, use the value %q.
Answer with JSON ONLY, no other words or formatting.`, Unknown)

const UserPrompt = `Identify the following values from the image:
- Make (make)
- Model (model)
- Body type (type), e.g. "Sedan", "Estate", "SUV", "Convertible"
- Model year (year), approximate is fine, plus or minus a few years
- Color (color)
- Condition (condition), e.g. "new", "good", "used", "poor"
- Estimated value (estimated_value) in Swedish kronor, approximate is fine
- A short description (description) of the car's appearance and any unique features. If the car is damaged, briefly describe roughly what the repairs would cost.

Remember: JSON only, no other words.`

// NewVehicleRequest builds the fixed identification request for one image.
func NewVehicleRequest(img []byte, mime string) Request {
	return Request{
		System:      SystemPrompt,
		User:        UserPrompt,
		Image:       img,
		MIME:        mime,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		JSON:        true,
	}
}
