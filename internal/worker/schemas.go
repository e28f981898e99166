package worker

import "sahayak-backend/internal/llm"

var worksheetSchema = &llm.Schema{
	Name: "worksheets",
	Definition: `{
  "type": "object",
  "required": ["worksheets"],
  "properties": {
    "worksheets": {
      "type": "array",
      "minItems": 3,
      "maxItems": 3,
      "items": {
        "type": "object",
        "required": ["title", "gradeLevel", "totalMarks", "questions"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "gradeLevel": {"type": "string", "minLength": 1},
          "totalMarks": {"type": "integer"},
          "questions": {
            "type": "array",
            "minItems": 5,
            "maxItems": 5,
            "items": {
              "type": "object",
              "required": ["question", "marks"],
              "properties": {
                "questionNumber": {"type": "integer"},
                "type": {"type": "string"},
                "question": {"type": "string", "minLength": 1},
                "options": {"type": "array", "items": {"type": "string"}},
                "answer": {"type": ["string", "number", "boolean"]},
                "marks": {"type": "integer", "minimum": 1}
              }
            }
          }
        }
      }
    }
  }
}`,
}

var syllabusPlanSchema = &llm.Schema{
	Name: "syllabus-plan",
	Definition: `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["weekNumber", "topic"],
    "properties": {
      "weekNumber": {"type": "integer", "minimum": 1, "maximum": 53},
      "subject": {"type": "string"},
      "topic": {"type": "string", "minLength": 1}
    }
  }
}`,
}
