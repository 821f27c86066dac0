package resume

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-builder/core"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the shapes a stored document may take. Every key is
// optional because older blobs predate some sections; only wrong types make a
// blob unusable.
const documentSchema = `{
  "type": "object",
  "definitions": {
    "text": {"type": ["string", "null"]},
    "lines": {"type": ["array", "null"], "items": {"type": ["string", "null"]}}
  },
  "properties": {
    "schemaVersion": {"type": "integer", "minimum": 0},
    "personal": {
      "type": ["object", "null"],
      "properties": {
        "name": {"$ref": "#/definitions/text"},
        "email": {"$ref": "#/definitions/text"},
        "phone": {"$ref": "#/definitions/text"},
        "location": {"$ref": "#/definitions/text"},
        "title": {"$ref": "#/definitions/text"},
        "summary": {"$ref": "#/definitions/text"},
        "website": {"$ref": "#/definitions/text"},
        "linkedin": {"$ref": "#/definitions/text"}
      }
    },
    "experience": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "id": {"$ref": "#/definitions/text"},
          "company": {"$ref": "#/definitions/text"},
          "position": {"$ref": "#/definitions/text"},
          "startDate": {"$ref": "#/definitions/text"},
          "endDate": {"$ref": "#/definitions/text"},
          "description": {"$ref": "#/definitions/text"},
          "highlights": {"$ref": "#/definitions/lines"}
        }
      }
    },
    "education": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "id": {"$ref": "#/definitions/text"},
          "institution": {"$ref": "#/definitions/text"},
          "degree": {"$ref": "#/definitions/text"},
          "field": {"$ref": "#/definitions/text"},
          "startDate": {"$ref": "#/definitions/text"},
          "endDate": {"$ref": "#/definitions/text"},
          "gpa": {"$ref": "#/definitions/text"}
        }
      }
    },
    "skills": {"$ref": "#/definitions/lines"},
    "customSections": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "id": {"$ref": "#/definitions/text"},
          "title": {"$ref": "#/definitions/text"},
          "content": {"$ref": "#/definitions/text"}
        }
      }
    },
    "template": {"$ref": "#/definitions/text"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// SchemaError lists every place a stored document deviates from the expected shape.
type SchemaError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed document:")
	for _, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", fe.Field, fe.Message))
	}
	return sb.String()
}

// migrations[v] upgrades a document from layout version v to v+1.
var migrations = []func(doc *core.Document){
	migrateV0,
}

// Repair turns a stored blob into a document that satisfies every invariant.
// It is a pure function: the shape check, the version migrations and the
// normalization pass all operate on the decoded copy only.
func Repair(raw []byte) (*core.Document, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse document JSON: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(generic))
	if err != nil {
		return nil, fmt.Errorf("failed to check document shape: %w", err)
	}
	if !result.Valid() {
		schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, schemaErr
	}

	var doc core.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.SchemaVersion > core.SchemaVersion {
		return nil, fmt.Errorf("document schema version %d is newer than supported version %d", doc.SchemaVersion, core.SchemaVersion)
	}

	for v := doc.SchemaVersion; v < core.SchemaVersion; v++ {
		migrations[v](&doc)
	}
	doc.SchemaVersion = core.SchemaVersion

	normalize(&doc)
	return &doc, nil
}

// migrateV0 upgrades blobs written before the layout was versioned. Those may
// lack customSections entirely.
func migrateV0(doc *core.Document) {
	if doc.CustomSections == nil {
		doc.CustomSections = []core.CustomSection{}
	}
	if doc.Experience == nil {
		doc.Experience = []core.ExperienceEntry{}
	}
	if doc.Education == nil {
		doc.Education = []core.EducationEntry{}
	}
	if doc.Skills == nil {
		doc.Skills = []string{}
	}
}

// normalize enforces the document invariants. It runs on every load, so it
// must be idempotent.
func normalize(doc *core.Document) {
	if !doc.Template.Valid() {
		doc.Template = core.DefaultTemplate
	}

	// Ids are unique per section; legacy blobs reuse "1" across sections.
	experience := make([]core.ExperienceEntry, 0, len(doc.Experience))
	freshID := idAssigner()
	for _, e := range doc.Experience {
		e.ID = freshID(e.ID)
		e.Highlights = cleanLines(e.Highlights)
		experience = append(experience, e)
	}
	doc.Experience = experience

	education := make([]core.EducationEntry, 0, len(doc.Education))
	freshID = idAssigner()
	for _, e := range doc.Education {
		e.ID = freshID(e.ID)
		education = append(education, e)
	}
	doc.Education = education

	sections := make([]core.CustomSection, 0, len(doc.CustomSections))
	freshID = idAssigner()
	for _, s := range doc.CustomSections {
		s.ID = freshID(s.ID)
		sections = append(sections, s)
	}
	doc.CustomSections = sections

	skills := make([]string, 0, len(doc.Skills))
	present := make(map[string]bool)
	for _, s := range doc.Skills {
		s = strings.TrimSpace(s)
		if s == "" || present[s] {
			continue
		}
		present[s] = true
		skills = append(skills, s)
	}
	doc.Skills = skills
}

// idAssigner keeps ids it has not seen and replaces blank or repeated ones.
func idAssigner() func(string) string {
	seen := make(map[string]bool)
	return func(id string) string {
		if id == "" || seen[id] {
			id = NewID()
		}
		seen[id] = true
		return id
	}
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// splitHighlights turns newline-delimited input into stored highlight lines.
func splitHighlights(value string) []string {
	lines := strings.Split(value, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return cleanLines(lines)
}
