// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
)

// promptTmpl is the instruction sent with every card pair. It asks for a
// bare JSON array and, when a taxonomy is set, for one item per category in
// taxonomy order.
var promptTmpl = template.Must(template.New("cards").Funcs(template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"fence": func() string { return "```" },
}).Parse(`I'm showing you a pair of {{with .Game}}{{.}} {{end}}trivia card images{{with .Language}} in {{.}}{{end}}. The first image shows the questions, and the second shows the corresponding answers.
{{if .Categories}}
The card holds exactly {{len .Categories}} questions, one per category, in this order:
{{range $i, $c := .Categories}}{{inc $i}}. {{$c}}
{{end}}
Return exactly {{len .Categories}} objects, in the order listed, with "category" set to the listed name.
{{else}}
Extract all questions, answers, and their categories.
{{end}}
Format your response as a JSON array of objects with the keys "category", "question", and "answer". Here's exactly how the output should look:
{{fence}}json
{{.Example}}
{{fence}}

Just output the JSON array with no additional text, explanations, or markdown. Don't add a root object; return the array directly.
`))

// PromptData parameterizes the instruction.
type PromptData struct {
	Game       string
	Language   string
	Categories []string
}

type exampleItem struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var exampleItems = []exampleItem{
	{Category: "History", Question: "Which year did World War II end?", Answer: "1945"},
	{Category: "Geography", Question: "What is the capital of Norway?", Answer: "Oslo"},
}

// RenderPrompt executes the instruction template.
func RenderPrompt(d PromptData) (string, error) {
	example := append([]exampleItem(nil), exampleItems...)
	for i := range example {
		if i < len(d.Categories) {
			example[i].Category = d.Categories[i]
		}
	}
	b, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding prompt example: %w", err)
	}

	var buf bytes.Buffer
	err = promptTmpl.Execute(&buf, struct {
		PromptData
		Example string
	}{PromptData: d, Example: string(b)})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}
