// internal/workers/templates/find-matching-templates/schema.go
package findmatchingtemplates

const inputSchema = `{
  "type": "object",
  "properties": {
    "subject":        {"type": "string"},
    "gradeLevel":     {"type": "integer"},
    "outputType":     {"type": "string"},
    "difficulty":     {"type": "string"},
    "keywords":       {"type": "array", "items": {"type": "string"}},
    "outputTypeOnly": {"type": "boolean"},
    "maxResults":     {"type": "integer", "minimum": 0, "maximum": 100}
  }
}`
