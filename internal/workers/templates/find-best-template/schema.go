// internal/workers/templates/find-best-template/schema.go
package findbesttemplate

// inputSchema checks types only; required fields and allowed values are
// enforced by the criteria normalizer so they surface as INVALID_CRITERIA.
const inputSchema = `{
  "type": "object",
  "properties": {
    "subject":    {"type": "string"},
    "gradeLevel": {"type": "integer"},
    "outputType": {"type": "string"},
    "difficulty": {"type": "string"},
    "keywords":   {"type": "array", "items": {"type": "string"}}
  }
}`
