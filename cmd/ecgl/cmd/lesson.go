package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/sexp"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ecglearn/pkg/lesson"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Lesson deck operations",
	Long:  `Commands for working with lesson decks (.lesson S-expression files)`,
}

var lessonListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the lessons in a directory",
	Long:  `Lists every lesson found in dir, or in the configured lesson_dir.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLessonList,
}

var lessonRunCmd = &cobra.Command{
	Use:   "run <file> [lesson-id]",
	Short: "Take a lesson in the terminal",
	Long: `Walks through a lesson step by step. Points from correctly answered
quizzes are credited to the configured user.

At each prompt:
  <enter>  - continue (flips flashcards first)
  1..n     - answer a quiz
  b        - back one step
  q        - quit (points earned so far are kept)`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLessonRun,
}

var lessonInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Check a lesson file and show its structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runLessonInspect,
}

func init() {
	rootCmd.AddCommand(lessonCmd)
	lessonCmd.AddCommand(lessonListCmd)
	lessonCmd.AddCommand(lessonRunCmd)
	lessonCmd.AddCommand(lessonInspectCmd)
}

func runLessonList(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.LessonDir
	}
	if dir == "" {
		return fmt.Errorf("no lesson directory given and lesson_dir is not configured")
	}

	lessons, err := lesson.LoadDir(dir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(lessons) == 0 {
		fmt.Fprintf(out, "No lessons in %s\n", dir)
		return nil
	}
	fmt.Fprintf(out, "%-16s %-36s %6s %6s %6s %6s\n", "ID", "TITLE", "SLIDES", "QUIZ", "CARDS", "POINTS")
	for _, l := range lessons {
		fmt.Fprintf(out, "%-16s %-36s %6d %6d %6d %6d\n", l.ID, l.Title,
			l.Count(lesson.StepSlide), l.Count(lesson.StepQuiz), l.Count(lesson.StepFlashcard), l.MaxScore())
	}
	return nil
}

func pickLesson(lessons []*lesson.Lesson, id string) (*lesson.Lesson, error) {
	if id == "" {
		return lessons[0], nil
	}
	for _, l := range lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("lesson %q not found", id)
}

func runLessonRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStack(ctx, cmd, "ecgl.lesson")
	if err != nil {
		return err
	}

	lessons, err := lesson.LoadFile(args[0])
	if err != nil {
		return err
	}
	id := ""
	if len(args) == 2 {
		id = args[1]
	}
	l, err := pickLesson(lessons, id)
	if err != nil {
		return err
	}

	seq := lesson.NewSequencer(l)
	play(seq, cmd.InOrStdin(), cmd.OutOrStdout())

	out := cmd.OutOrStdout()
	answered, total := seq.Progress()
	fmt.Fprintf(out, "\nScore: %d/%d (%d of %d quizzes answered)\n", seq.Score(), l.MaxScore(), answered, total)
	if seq.Score() == 0 {
		return nil
	}
	balance, err := st.ledger.Credit(ctx, st.cfg.User, seq.Score())
	if err != nil {
		return fmt.Errorf("error crediting points: %w", err)
	}
	st.logger.Info("lesson finished", "lesson", l.ID, "user", st.cfg.User, "score", seq.Score())
	fmt.Fprintf(out, "Balance for %s: %d points\n", st.cfg.User, balance)
	return nil
}

// play drives seq from line-based input until the lesson ends, the user
// quits or the input runs out.
func play(seq *lesson.Sequencer, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	l := seq.Lesson()
	fmt.Fprintf(out, "== %s ==\n", l.Title)

	for {
		step, ok := seq.Current()
		if !ok {
			return
		}
		fmt.Fprintf(out, "\n[%d/%d] %s\n", seq.Index()+1, len(l.Steps), step.Kind)
		showStep(seq, step, out)

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "q":
			return
		case input == "b":
			seq.Prev()
		case step.Kind == lesson.StepQuiz:
			answerQuiz(seq, step, input, out)
		case step.Kind == lesson.StepFlashcard:
			back, _ := seq.Flip()
			if back {
				fmt.Fprintf(out, "   %s\n", step.Card.Back)
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return
				}
				seq.Flip()
			}
			seq.Next()
		default:
			seq.Next()
		}
	}
}

func showStep(seq *lesson.Sequencer, step lesson.Step, out io.Writer) {
	switch step.Kind {
	case lesson.StepSlide:
		fmt.Fprintf(out, "%s\n\n%s\n", step.Slide.Title, step.Slide.Body)
		if step.Slide.Image != "" {
			fmt.Fprintf(out, "(strip: %s - open with `ecgl view`)\n", step.Slide.Image)
		}
	case lesson.StepQuiz:
		fmt.Fprintf(out, "%s (%d points)\n", step.Quiz.Question, step.Quiz.Points)
		for i, c := range step.Quiz.Choices {
			fmt.Fprintf(out, "  %d) %s\n", i+1, c.Text)
		}
		if res, ok := seq.Result(seq.Index()); ok {
			fmt.Fprintf(out, "already answered: %d (%s)\n", res.Choice+1, verdict(res.Correct))
		}
	case lesson.StepFlashcard:
		fmt.Fprintf(out, "%s\n(press enter to flip)\n", step.Card.Front)
	}
}

func answerQuiz(seq *lesson.Sequencer, step lesson.Step, input string, out io.Writer) {
	if input == "" {
		if _, answered := seq.Result(seq.Index()); answered {
			seq.Next()
		}
		return
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		fmt.Fprintf(out, "enter a choice between 1 and %d\n", len(step.Quiz.Choices))
		return
	}
	res, err := seq.Answer(n - 1)
	switch {
	case err == nil:
		fmt.Fprintf(out, "%s! +%d points\n", verdict(res.Correct), res.Points)
		if step.Quiz.Explanation != "" {
			fmt.Fprintf(out, "   %s\n", step.Quiz.Explanation)
		}
		seq.Next()
	case errors.Is(err, lesson.ErrAlreadyAnswered):
		seq.Next()
	default:
		fmt.Fprintf(out, "%v\n", err)
	}
}

func verdict(correct bool) string {
	if correct {
		return "Correct"
	}
	return "Wrong"
}

func runLessonInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading lesson: %w", err)
	}

	// Independent reader as a syntax cross-check of the deck
	raw, err := sexp.ParseString(string(data))
	if err != nil {
		return fmt.Errorf("syntax error: %w", err)
	}
	leaves := 0
	for _, s := range raw {
		if !s.IsLeaf() {
			leaves += s.LeafCount()
		}
	}
	fmt.Fprintf(out, "%s: %d top-level forms, %d atoms\n", args[0], len(raw), leaves)

	lessons, err := lesson.ParseString(string(data))
	if err != nil {
		return err
	}
	for _, l := range lessons {
		fmt.Fprintf(out, "\n%s - %s (max %d points)\n", l.ID, l.Title, l.MaxScore())
		for i, s := range l.Steps {
			fmt.Fprintf(out, "  %2d %-9s %s\n", i+1, s.Kind, s.Title())
		}
	}
	return nil
}
