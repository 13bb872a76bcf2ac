// internal/workers/templates/record-template-selection/schema.go
package recordtemplateselection

const inputSchema = `{
  "type": "object",
  "required": ["userId", "templateId"],
  "properties": {
    "userId":                  {"type": "string", "minLength": 1},
    "templateId":              {"type": "string", "minLength": 1},
    "recommendationRequestId": {"type": "string"},
    "rank":                    {"type": "integer", "minimum": 0},
    "score":                   {"type": "number", "minimum": 0, "maximum": 1}
  }
}`
