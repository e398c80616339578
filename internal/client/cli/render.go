package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/smartstudy/internal/client/api"
)

func renderArtifacts(w io.Writer, summary *string, cards []api.Flashcard, quiz []api.QuizQuestion) {
	if summary != nil {
		fmt.Fprintf(w, "\n== Summary ==\n%s\n", *summary)
	}

	if len(cards) > 0 {
		fmt.Fprintln(w, "\n== Flashcards ==")
		for i, c := range cards {
			fmt.Fprintf(w, "%d. %s: %s\n", i+1, c.Term, c.Definition)
		}
	}

	if len(quiz) > 0 {
		fmt.Fprintln(w, "\n== Quiz ==")
		for _, q := range quiz {
			fmt.Fprintf(w, "%d. [%s] %s\n", q.ID, q.QuestionType, q.Question)
			for i, o := range q.Options {
				fmt.Fprintf(w, "   %c) %s\n", 'A'+i, o)
			}
			fmt.Fprintf(w, "   Answer: %s\n", q.Answer())
		}
	}
}
