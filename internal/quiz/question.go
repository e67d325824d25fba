// Package quiz turns free-form completion text into question/answer pairs
// and grades free-text answers against a reference.
package quiz

import "fmt"

// Question is one generated quiz item.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var placeholderTemplates = []Question{
	{Question: "What is %s?", Answer: "%s is the topic of this quiz"},
	{Question: "Name one key concept related to %s.", Answer: "A key concept of %s"},
	{Question: "Why is %s important?", Answer: "%s is important because of its applications"},
	{Question: "Give an example of %s in practice.", Answer: "An example of %s"},
	{Question: "What problem does %s address?", Answer: "%s addresses a core problem in its field"},
	{Question: "Describe one limitation of %s.", Answer: "A limitation of %s"},
	{Question: "How would you explain %s to a classmate?", Answer: "%s can be explained by its basic principles"},
}

// Placeholders returns n templated questions about topic, continuing the
// template rotation from offset so fills do not repeat earlier items.
func Placeholders(topic string, offset, n int) []Question {
	if topic == "" {
		topic = "this topic"
	}
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		t := placeholderTemplates[(offset+i)%len(placeholderTemplates)]
		out = append(out, Question{
			Question: fmt.Sprintf(t.Question, topic),
			Answer:   fmt.Sprintf(t.Answer, topic),
		})
	}
	return out
}
