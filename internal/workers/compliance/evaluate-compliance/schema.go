// internal/workers/compliance/evaluate-compliance/schema.go
package evaluatecompliance

// An empty standards list passes the schema so it surfaces as
// NO_STANDARDS_REQUESTED.
const inputSchema = `{
  "type": "object",
  "required": ["content", "standards"],
  "properties": {
    "content":    {"type": "string"},
    "gradeLevel": {"type": "integer"},
    "subject":    {"type": "string"},
    "standards":  {"type": "array", "items": {"type": "string"}}
  }
}`
