package intent

import "strings"

// Topic names returned by Classify.
const (
	Skills       = "skills"
	Projects     = "projects"
	Experience   = "experience"
	Education    = "education"
	About        = "about"
	Contact      = "contact"
	Achievements = "achievements"
	Greeting     = "greeting"
	Unknown      = "unknown"
)

// Rule pairs a topic with the keywords that select it.
type Rule struct {
	Topic    string
	Keywords []string
}

// DefaultRules lists the question topics in priority order. A question that
// mentions both "skills" and "projects" is answered as a skills question.
var DefaultRules = []Rule{
	{Skills, []string{"skill", "technology", "tech", "programming", "know", "proficient", "language"}},
	{Projects, []string{"project", "portfolio", "work", "built", "developed", "created"}},
	{Experience, []string{"experience", "internship", "job", "work", "position", "role"}},
	{Education, []string{"education", "degree", "university", "study", "school", "college"}},
	{About, []string{"who", "about", "tell me", "yourself", "name", "introduce"}},
	{Contact, []string{"contact", "email", "phone", "reach", "connect", "linkedin", "github"}},
	{Achievements, []string{"achievement", "award", "accomplishment", "prize"}},
	{Greeting, []string{"hello", "hi", "hey", "help", "what can", "what do"}},
}

// Classifier maps a free-text question to the first rule whose keywords it
// contains. Matching is a case-insensitive substring test.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over rules, evaluated in order.
func NewClassifier(rules []Rule) *Classifier {
	lowered := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		lowered[i] = Rule{Topic: r.Topic, Keywords: kws}
	}
	return &Classifier{rules: lowered}
}

// Classify returns the topic of text, or Unknown when no rule matches.
func (c *Classifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Topic
			}
		}
	}
	return Unknown
}
