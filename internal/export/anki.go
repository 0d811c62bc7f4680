// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// AnkiColumns is the column order of the flashcard text format.
var AnkiColumns = []string{"Category", "Question", "Answer", "CardID"}

// ankiHeader declares the separator, the HTML flag, and the columns.
func ankiHeader() string {
	return "#separator:semicolon\n" +
		"#html:true\n" +
		"#columns:" + strings.Join(AnkiColumns, types.FieldSeparator) + "\n"
}

// ankiEscaper replaces the field separator with a comma and line breaks
// with <br>. The comma substitution is lossy; consumers of existing decks
// rely on it.
var ankiEscaper = strings.NewReplacer(
	types.FieldSeparator, types.SeparatorReplace,
	"\r\n", "<br>",
	"\r", "<br>",
	"\n", "<br>",
)

// WriteAnki writes records in the semicolon-separated flashcard import
// format, one line per record.
func WriteAnki(w io.Writer, records []types.Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(ankiHeader()); err != nil {
		return err
	}
	for _, r := range records {
		fields := []string{r.Category, r.Question, r.Answer, r.ID}
		for i, f := range fields {
			fields[i] = ankiEscaper.Replace(f)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, types.FieldSeparator)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
