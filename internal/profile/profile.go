// Package profile assembles the grounding context for profile Q&A:
// static owner facts, the project list, and a cached social snapshot.
package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Owner holds the site owner's static facts.
type Owner struct {
	Name     string
	Email    string
	Birthday time.Time
	Location string
	Title    string
}

// Project is one portfolio entry.
type Project struct {
	Name        string
	Description string
	Tech        []string
}

// defaultProjects is the static project list rendered into the
// grounding block. Kept in code: it changes with the portfolio itself.
var defaultProjects = []Project{
	{
		Name:        "Portfolio Assistant",
		Description: "LLM-backed assistant answering questions about this site and drafting outreach emails",
		Tech:        []string{"Go", "chi", "NATS", "OpenRouter"},
	},
	{
		Name:        "Terminal Portfolio",
		Description: "Browser terminal with a virtual filesystem over the portfolio content",
		Tech:        []string{"TypeScript", "React"},
	},
	{
		Name:        "Live Wallpaper Picker",
		Description: "Ambient video wallpaper selection for the site background",
		Tech:        []string{"TypeScript"},
	},
}

// Age returns the owner's age in full years at now.
func (o Owner) Age(now time.Time) int {
	age := now.Year() - o.Birthday.Year()
	anniversary := time.Date(now.Year(), o.Birthday.Month(), o.Birthday.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(anniversary) {
		age--
	}
	return age
}

var (
	agePattern      = regexp.MustCompile(`(?i)\b(how old|what('?s| is) (your|his|her|their) age|years old)\b`)
	locationPattern = regexp.MustCompile(`(?i)\b(where (are you|is he|do you live)|based|located|location)\b`)
)

// Assembler builds the opaque grounding text block consumed by the
// profile-context capability.
type Assembler struct {
	owner    Owner
	projects []Project
	social   *SnapshotCache
}

// NewAssembler creates an assembler. social may be nil when no snapshot
// source is configured.
func NewAssembler(owner Owner, social *SnapshotCache) *Assembler {
	return &Assembler{
		owner:    owner,
		projects: defaultProjects,
		social:   social,
	}
}

// Owner returns the configured owner facts.
func (a *Assembler) Owner() Owner {
	return a.owner
}

// ShortCircuit answers a small set of deterministic questions from
// static data so no upstream call is needed. Cheapest path, tried first.
func (a *Assembler) ShortCircuit(text string, now time.Time) (string, bool) {
	switch {
	case agePattern.MatchString(text):
		first := firstName(a.owner.Name)
		return fmt.Sprintf("%s is %d years old.", first, a.owner.Age(now)), true
	case locationPattern.MatchString(text):
		first := firstName(a.owner.Name)
		return fmt.Sprintf("%s is based in %s.", first, a.owner.Location), true
	}
	return "", false
}

// ContextBlock renders the grounding block. The pipeline treats the
// result as an opaque string.
func (a *Assembler) ContextBlock(ctx context.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "About %s:\n", a.owner.Name)
	fmt.Fprintf(&b, "- Title: %s\n", a.owner.Title)
	fmt.Fprintf(&b, "- Location: %s\n", a.owner.Location)
	fmt.Fprintf(&b, "- Contact: %s\n", a.owner.Email)
	fmt.Fprintf(&b, "- Age: %d\n", a.owner.Age(time.Now()))

	b.WriteString("\nProjects:\n")
	for _, p := range a.projects {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", p.Name, p.Description, strings.Join(p.Tech, ", "))
	}

	if a.social != nil {
		if snap, ok := a.social.Get(ctx); ok {
			b.WriteString("\n")
			b.WriteString(snap.Render())
		}
	}

	return b.String()
}

func firstName(full string) string {
	if fields := strings.Fields(full); len(fields) > 0 {
		return fields[0]
	}
	return full
}
