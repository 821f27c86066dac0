package core

// SchemaVersion is the layout version written with every persisted document.
const SchemaVersion = 1

// PresentSentinel is the end date of an ongoing position.
const PresentSentinel = "Present"

type TemplateID string

const (
	TemplateModern    TemplateID = "modern"
	TemplateClassic   TemplateID = "classic"
	TemplateMinimal   TemplateID = "minimal"
	TemplateCreative  TemplateID = "creative"
	TemplateExecutive TemplateID = "executive"
	TemplateTech      TemplateID = "tech"
)

// DefaultTemplate is used whenever a stored template id is not recognized.
const DefaultTemplate = TemplateModern

var templates = []TemplateID{
	TemplateModern,
	TemplateClassic,
	TemplateMinimal,
	TemplateCreative,
	TemplateExecutive,
	TemplateTech,
}

// Templates returns the closed set of template ids in display order.
func Templates() []TemplateID {
	out := make([]TemplateID, len(templates))
	copy(out, templates)
	return out
}

func (t TemplateID) Valid() bool {
	for _, known := range templates {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTemplate maps untyped input onto a TemplateID.
func ParseTemplate(s string) (TemplateID, error) {
	t := TemplateID(s)
	if !t.Valid() {
		return "", &InvalidTemplateError{Template: s}
	}
	return t, nil
}

type (
	Personal struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
		Title    string `json:"title"`
		Summary  string `json:"summary"`
		Website  string `json:"website"`
		LinkedIn string `json:"linkedin"`
	}

	ExperienceEntry struct {
		ID          string   `json:"id"`
		Company     string   `json:"company"`
		Position    string   `json:"position"`
		StartDate   string   `json:"startDate"`
		EndDate     string   `json:"endDate"`
		Description string   `json:"description"`
		Highlights  []string `json:"highlights"`
	}

	EducationEntry struct {
		ID          string `json:"id"`
		Institution string `json:"institution"`
		Degree      string `json:"degree"`
		Field       string `json:"field"`
		StartDate   string `json:"startDate"`
		EndDate     string `json:"endDate"`
		GPA         string `json:"gpa"`
	}

	CustomSection struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	// Document is one user's resume. A *Document handed out by the store is a
	// published snapshot and must be treated as read-only; use Clone to get a
	// copy that is safe to modify.
	Document struct {
		SchemaVersion  int               `json:"schemaVersion"`
		Personal       Personal          `json:"personal"`
		Experience     []ExperienceEntry `json:"experience"`
		Education      []EducationEntry  `json:"education"`
		Skills         []string          `json:"skills"`
		CustomSections []CustomSection   `json:"customSections"`
		Template       TemplateID        `json:"template"`
	}
)

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := *d
	out.Experience = make([]ExperienceEntry, len(d.Experience))
	for i, e := range d.Experience {
		e.Highlights = append([]string{}, e.Highlights...)
		out.Experience[i] = e
	}
	out.Education = append([]EducationEntry{}, d.Education...)
	out.Skills = append([]string{}, d.Skills...)
	out.CustomSections = append([]CustomSection{}, d.CustomSections...)
	return &out
}

// HasSkill reports whether skill is present, compared case-sensitively.
func (d *Document) HasSkill(skill string) bool {
	for _, s := range d.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
