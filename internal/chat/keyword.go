package chat

import (
	"fmt"
	"strings"

	"github.com/amishk599/folio/internal/intent"
	"github.com/amishk599/folio/internal/model"
)

// projectExcerptLen is the number of characters of each project description
// quoted in a keyword answer.
const projectExcerptLen = 100

// KeywordResponder answers questions from the resume alone, by topic.
type KeywordResponder struct {
	classifier *intent.Classifier
}

// NewKeywordResponder returns a responder using the default topic rules.
func NewKeywordResponder() *KeywordResponder {
	return &KeywordResponder{classifier: intent.NewClassifier(intent.DefaultRules)}
}

// Topic classifies message.
func (k *KeywordResponder) Topic(message string) string {
	return k.classifier.Classify(message)
}

// Respond returns an answer to message composed from r.
func (k *KeywordResponder) Respond(r model.Resume, message string) string {
	switch k.Topic(message) {
	case intent.Skills:
		return fmt.Sprintf("I'm skilled in: %s. I specialize in various programming languages, web technologies, and tools for full-stack development.",
			strings.Join(r.Skills.All(), ", "))

	case intent.Projects:
		if len(r.Projects) == 0 {
			return "I have several projects showcasing my development skills!"
		}
		var lines []string
		for _, p := range r.Projects[:min(2, len(r.Projects))] {
			lines = append(lines, fmt.Sprintf("%s - %s...", p.Name, truncate(p.Description, projectExcerptLen)))
		}
		return strings.Join(lines, "\n")

	case intent.Experience:
		if len(r.Experience) == 0 {
			return "I have hands-on experience in web development and building applications."
		}
		var b strings.Builder
		b.WriteString("I have experience as:\n")
		for _, e := range r.Experience {
			fmt.Fprintf(&b, "- %s at %s (%s): %s\n", e.Role, e.Company, e.Period, e.Description)
		}
		return b.String()

	case intent.Education:
		if len(r.Education) == 0 {
			return "I'm a BTECH undergraduate with a strong foundation in computer science."
		}
		var b strings.Builder
		b.WriteString("My education:\n")
		for _, e := range r.Education {
			fmt.Fprintf(&b, "- %s at %s (%s)\n", e.Degree, e.Institution, e.Period)
		}
		return b.String()

	case intent.About:
		return fmt.Sprintf("Hi! I'm %s. %s",
			orDefault(r.Name, "a developer"),
			orDefault(r.Summary, "I am a passionate developer."))

	case intent.Contact:
		return fmt.Sprintf("You can reach me at:\n- Email: %s\n- Phone: %s\n- LinkedIn: %s\n- GitHub: %s",
			orDefault(r.Email, "N/A"),
			orDefault(r.Phone, "N/A"),
			orDefault(r.LinkedIn, "N/A"),
			orDefault(r.GitHub, "N/A"))

	case intent.Achievements:
		if len(r.Achievements) == 0 {
			return "I'm proud of my academic and professional accomplishments."
		}
		return "My achievements:\n- " + strings.Join(r.Achievements, "\n- ")

	case intent.Greeting:
		return "Hello! I'm an AI assistant on this portfolio. I can tell you about my background, skills, experience, projects, education, and achievements. What would you like to know?"

	default:
		return fmt.Sprintf("That's an interesting question! While I may not have a specific answer about '%s', I can tell you about my background, skills, experience, projects, and education. Feel free to ask about any of those topics!", message)
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
