package resume

import (
	"resume-builder/core"

	"github.com/oklog/ulid/v2"
)

// NewID returns a fresh entry id. ULIDs are unique across the process and are
// never handed out twice, so an id freed by a removal is never reused.
func NewID() string {
	return ulid.Make().String()
}

// DefaultDocument returns the sample resume a new session starts from.
func DefaultDocument() *core.Document {
	return &core.Document{
		SchemaVersion: core.SchemaVersion,
		Personal: core.Personal{
			Name:     "John Doe",
			Email:    "john.doe@example.com",
			Phone:    "(123) 456-7890",
			Location: "San Francisco, CA",
			Title:    "Senior Software Engineer",
			Summary:  "Experienced software engineer with a passion for building user-friendly applications. Skilled in React, TypeScript, and Node.js with 5+ years of professional experience.",
			Website:  "johndoe.com",
			LinkedIn: "linkedin.com/in/johndoe",
		},
		Experience: []core.ExperienceEntry{
			{
				ID:          NewID(),
				Company:     "Tech Solutions Inc.",
				Position:    "Senior Software Engineer",
				StartDate:   "2020-01",
				EndDate:     core.PresentSentinel,
				Description: "Led a team of 5 developers in building a new e-commerce platform.",
				Highlights: []string{
					"Architected and implemented a React-based frontend with TypeScript",
					"Improved site performance by 40% through code optimization",
					"Implemented CI/CD pipeline using GitHub Actions",
					"Mentored junior developers on best practices and coding standards",
				},
			},
			{
				ID:          NewID(),
				Company:     "Web Innovators",
				Position:    "Frontend Developer",
				StartDate:   "2018-03",
				EndDate:     "2019-12",
				Description: "Worked on various client projects as part of an agile development team.",
				Highlights: []string{
					"Developed responsive web applications using React and Redux",
					"Collaborated with designers to implement UI/UX improvements",
					"Reduced bundle size by 30% through code splitting and lazy loading",
					"Participated in code reviews and technical planning sessions",
				},
			},
		},
		Education: []core.EducationEntry{
			{
				ID:          NewID(),
				Institution: "University of California, Berkeley",
				Degree:      "Bachelor of Science",
				Field:       "Computer Science",
				StartDate:   "2014-09",
				EndDate:     "2018-05",
				GPA:         "3.8",
			},
		},
		Skills: []string{
			"JavaScript",
			"TypeScript",
			"React",
			"Node.js",
			"HTML/CSS",
			"Redux",
			"Git",
			"Jest",
			"Webpack",
			"Responsive Design",
		},
		CustomSections: []core.CustomSection{},
		Template:       core.DefaultTemplate,
	}
}
