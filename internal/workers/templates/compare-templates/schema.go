// internal/workers/templates/compare-templates/schema.go
package comparetemplates

const inputSchema = `{
  "type": "object",
  "required": ["templateIds"],
  "properties": {
    "subject":     {"type": "string"},
    "gradeLevel":  {"type": "integer"},
    "outputType":  {"type": "string"},
    "difficulty":  {"type": "string"},
    "keywords":    {"type": "array", "items": {"type": "string"}},
    "templateIds": {"type": "array", "items": {"type": "string"}, "maxItems": 50}
  }
}`
