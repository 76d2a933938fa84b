package lesson

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OpenTraceLab/ecglearn/pkg/sexpr"
)

// FileExt is the extension of lesson deck files
const FileExt = ".lesson"

// DefaultQuizPoints is used when a quiz has no (points N) node
const DefaultQuizPoints = 10

// Parse reads every (lesson ...) form from r
func Parse(r io.Reader) ([]*Lesson, error) {
	exprs, err := sexpr.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("lesson: %w", err)
	}

	var lessons []*Lesson
	for _, expr := range exprs {
		list, ok := expr.(*sexpr.List)
		if !ok || list.Key() != "lesson" {
			return nil, fmt.Errorf("lesson: top-level form must be (lesson ...), got %s", expr)
		}
		l, err := parseLesson(list)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

// ParseString is Parse over a string
func ParseString(s string) ([]*Lesson, error) {
	return Parse(strings.NewReader(s))
}

// LoadFile parses a deck file
func LoadFile(path string) ([]*Lesson, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	lessons, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lessons, nil
}

// LoadDir parses every *.lesson file in dir. Lesson IDs must be unique
// across the directory; lessons are returned sorted by ID.
func LoadDir(dir string) ([]*Lesson, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+FileExt))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string)
	var all []*Lesson
	for _, path := range paths {
		lessons, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, l := range lessons {
			if prev, ok := seen[l.ID]; ok {
				return nil, fmt.Errorf("lesson: duplicate id %q in %s and %s", l.ID, prev, path)
			}
			seen[l.ID] = path
			all = append(all, l)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func parseLesson(list *sexpr.List) (*Lesson, error) {
	l := &Lesson{}
	var ok bool
	if l.ID, ok = sexpr.Field(list, "id"); !ok || l.ID == "" {
		return nil, fmt.Errorf("lesson: line %d: missing (id ...)", list.Line)
	}
	l.Title, _ = sexpr.Field(list, "title")

	for _, child := range sexpr.Children(list) {
		var (
			step Step
			err  error
		)
		switch child.Key() {
		case "id", "title":
			continue
		case "slide":
			step, err = parseSlide(child)
		case "quiz":
			step, err = parseQuiz(child)
		case "flashcard":
			step, err = parseFlashcard(child)
		default:
			err = fmt.Errorf("line %d: unknown step (%s)", child.Line, child.Key())
		}
		if err != nil {
			return nil, fmt.Errorf("lesson %s: %w", l.ID, err)
		}
		l.Steps = append(l.Steps, step)
	}
	if len(l.Steps) == 0 {
		return nil, fmt.Errorf("lesson %s: no steps", l.ID)
	}
	return l, nil
}

func parseSlide(list *sexpr.List) (Step, error) {
	s := &Slide{}
	s.Title, _ = sexpr.Field(list, "title")
	s.Body, _ = sexpr.Field(list, "body")
	s.Image, _ = sexpr.Field(list, "image")
	if s.Title == "" && s.Body == "" && s.Image == "" {
		return Step{}, fmt.Errorf("line %d: empty slide", list.Line)
	}
	return Step{Kind: StepSlide, Slide: s}, nil
}

func parseQuiz(list *sexpr.List) (Step, error) {
	q := &Quiz{Points: DefaultQuizPoints}
	var ok bool
	if q.Question, ok = sexpr.Field(list, "question"); !ok {
		return Step{}, fmt.Errorf("line %d: quiz missing (question ...)", list.Line)
	}
	q.Explanation, _ = sexpr.Field(list, "explanation")
	q.Image, _ = sexpr.Field(list, "image")

	if pts, ok := sexpr.Find(list, "points"); ok {
		n, err := sexpr.GetInt(pts, 1)
		if err != nil {
			return Step{}, err
		}
		if n < 0 {
			return Step{}, fmt.Errorf("line %d: negative points", pts.Line)
		}
		q.Points = n
	}

	correct := 0
	for _, c := range sexpr.FindAll(list, "choice") {
		text, err := sexpr.GetString(c, 1)
		if err != nil {
			return Step{}, err
		}
		ch := Choice{Text: text, Correct: sexpr.HasFlag(c, "correct")}
		if ch.Correct {
			correct++
		}
		q.Choices = append(q.Choices, ch)
	}
	if len(q.Choices) < 2 {
		return Step{}, fmt.Errorf("line %d: quiz needs at least 2 choices, got %d", list.Line, len(q.Choices))
	}
	if correct == 0 {
		return Step{}, fmt.Errorf("line %d: quiz has no correct choice", list.Line)
	}
	return Step{Kind: StepQuiz, Quiz: q}, nil
}

func parseFlashcard(list *sexpr.List) (Step, error) {
	c := &Flashcard{}
	var ok bool
	if c.Front, ok = sexpr.Field(list, "front"); !ok {
		return Step{}, fmt.Errorf("line %d: flashcard missing (front ...)", list.Line)
	}
	if c.Back, ok = sexpr.Field(list, "back"); !ok {
		return Step{}, fmt.Errorf("line %d: flashcard missing (back ...)", list.Line)
	}
	return Step{Kind: StepFlashcard, Card: c}, nil
}
