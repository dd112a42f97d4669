package openai

const colorResponseSchema = `{
  "type": "object",
  "properties": {
    "r": {"type": "integer", "minimum": 0, "maximum": 255},
    "g": {"type": "integer", "minimum": 0, "maximum": 255},
    "b": {"type": "integer", "minimum": 0, "maximum": 255}
  },
  "required": ["r", "g", "b"],
  "additionalProperties": false
}`

const colorPrompt = `You are shown a product photo of a single garment.
Report the dominant color of the garment itself as an sRGB triple and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
or acknowledgment. Start your response directly with the opening brace { and end with the closing brace }.

` + colorResponseSchema + `

Rules:
- Ignore the background, the model wearing the garment, and any text or logos.
- For patterned garments report the color covering the largest area.
- Each channel is an integer from 0 to 255.

Example:
{"r": 31, "g": 45, "b": 96}`
