// internal/workers/templates/personalized-template-recommendations/schema.go
package personalizedrecommendations

const inputSchema = `{
  "type": "object",
  "properties": {
    "subject":        {"type": "string"},
    "gradeLevel":     {"type": "integer"},
    "outputType":     {"type": "string"},
    "difficulty":     {"type": "string"},
    "keywords":       {"type": "array", "items": {"type": "string"}},
    "userId":         {"type": "string"},
    "outputTypeOnly": {"type": "boolean"},
    "maxResults":     {"type": "integer", "minimum": 0, "maximum": 100},
    "preferences": {
      "type": "object",
      "properties": {
        "outputTypeCounts":    {"type": "object", "additionalProperties": {"type": "integer"}},
        "subjectCounts":       {"type": "object", "additionalProperties": {"type": "integer"}},
        "preferredDifficulty": {"type": "string"}
      }
    }
  }
}`
