package core

// Field identifiers are closed enumerations, one per editable entity. Untyped
// input (HTTP paths, CLI arguments) goes through the Parse functions, which are
// the only place an unknown name can be rejected.

type PersonalField int

const (
	PersonalName PersonalField = iota + 1
	PersonalEmail
	PersonalPhone
	PersonalLocation
	PersonalTitle
	PersonalSummary
	PersonalWebsite
	PersonalLinkedIn
)

var personalFieldNames = map[PersonalField]string{
	PersonalName:     "name",
	PersonalEmail:    "email",
	PersonalPhone:    "phone",
	PersonalLocation: "location",
	PersonalTitle:    "title",
	PersonalSummary:  "summary",
	PersonalWebsite:  "website",
	PersonalLinkedIn: "linkedin",
}

func (f PersonalField) String() string { return personalFieldNames[f] }

func (f PersonalField) Valid() bool {
	_, ok := personalFieldNames[f]
	return ok
}

func ParsePersonalField(s string) (PersonalField, error) {
	for f, name := range personalFieldNames {
		if name == s {
			return f, nil
		}
	}
	return 0, &InvalidFieldError{Entity: "personal", Field: s}
}

type ExperienceField int

const (
	ExperienceCompany ExperienceField = iota + 1
	ExperiencePosition
	ExperienceStartDate
	ExperienceEndDate
	ExperienceDescription
	ExperienceHighlights
)

var experienceFieldNames = map[ExperienceField]string{
	ExperienceCompany:     "company",
	ExperiencePosition:    "position",
	ExperienceStartDate:   "startDate",
	ExperienceEndDate:     "endDate",
	ExperienceDescription: "description",
	ExperienceHighlights:  "highlights",
}

func (f ExperienceField) String() string { return experienceFieldNames[f] }

func (f ExperienceField) Valid() bool {
	_, ok := experienceFieldNames[f]
	return ok
}

func ParseExperienceField(s string) (ExperienceField, error) {
	for f, name := range experienceFieldNames {
		if name == s {
			return f, nil
		}
	}
	return 0, &InvalidFieldError{Entity: "experience", Field: s}
}

type EducationField int

const (
	EducationInstitution EducationField = iota + 1
	EducationDegree
	EducationFieldOfStudy
	EducationStartDate
	EducationEndDate
	EducationGPA
)

var educationFieldNames = map[EducationField]string{
	EducationInstitution:  "institution",
	EducationDegree:       "degree",
	EducationFieldOfStudy: "field",
	EducationStartDate:    "startDate",
	EducationEndDate:      "endDate",
	EducationGPA:          "gpa",
}

func (f EducationField) String() string { return educationFieldNames[f] }

func (f EducationField) Valid() bool {
	_, ok := educationFieldNames[f]
	return ok
}

func ParseEducationField(s string) (EducationField, error) {
	for f, name := range educationFieldNames {
		if name == s {
			return f, nil
		}
	}
	return 0, &InvalidFieldError{Entity: "education", Field: s}
}

type CustomSectionField int

const (
	CustomSectionTitle CustomSectionField = iota + 1
	CustomSectionContent
)

var customSectionFieldNames = map[CustomSectionField]string{
	CustomSectionTitle:   "title",
	CustomSectionContent: "content",
}

func (f CustomSectionField) String() string { return customSectionFieldNames[f] }

func (f CustomSectionField) Valid() bool {
	_, ok := customSectionFieldNames[f]
	return ok
}

func ParseCustomSectionField(s string) (CustomSectionField, error) {
	for f, name := range customSectionFieldNames {
		if name == s {
			return f, nil
		}
	}
	return 0, &InvalidFieldError{Entity: "customSection", Field: s}
}
