package template

// TemplatesJSONSchema is a JSON-Schema (draft 2020-12 subset) for the
// template definitions file. The loader validates the raw document against
// it before compiling any pattern, so malformed configs fail with a precise
// pointer instead of a regexp compile panic deep in the registry.
const TemplatesJSONSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["templates"],
  "properties": {
    "templates": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["id", "signals", "rules"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "signals": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "rules": {
            "type": "array",
            "items": {
              "type": "object",
              "additionalProperties": false,
              "required": ["field", "pattern"],
              "properties": {
                "field": {"type": "string", "minLength": 1},
                "pattern": {"type": "string", "minLength": 1},
                "required": {"type": "boolean"}
              }
            }
          }
        }
      }
    }
  }
}`
