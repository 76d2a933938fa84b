// Package lesson loads declarative lesson decks (slides, quizzes and
// flashcards) and sequences a learner through them.
package lesson

import "fmt"

// StepKind identifies the kind of a lesson step
type StepKind int

const (
	StepSlide StepKind = iota
	StepQuiz
	StepFlashcard
)

func (k StepKind) String() string {
	switch k {
	case StepSlide:
		return "slide"
	case StepQuiz:
		return "quiz"
	case StepFlashcard:
		return "flashcard"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Slide is a page of reading material, optionally illustrated
type Slide struct {
	Title string
	Body  string
	Image string // path or URL of an ECG strip, opened in the viewer
}

// Choice is one answer of a quiz
type Choice struct {
	Text    string
	Correct bool
}

// Quiz is a multiple choice question worth Points when answered correctly
type Quiz struct {
	Question    string
	Choices     []Choice
	Points      int
	Explanation string
	Image       string
}

// Flashcard has a front prompt and a back answer
type Flashcard struct {
	Front string
	Back  string
}

// Step is one unit of a lesson. Exactly one of the pointers is set,
// matching Kind.
type Step struct {
	Kind  StepKind
	Slide *Slide
	Quiz  *Quiz
	Card  *Flashcard
}

// Title returns a one-line label for the step
func (s Step) Title() string {
	switch s.Kind {
	case StepSlide:
		return s.Slide.Title
	case StepQuiz:
		return s.Quiz.Question
	case StepFlashcard:
		return s.Card.Front
	}
	return ""
}

// Lesson is an ordered deck of steps
type Lesson struct {
	ID    string
	Title string
	Steps []Step
}

// MaxScore returns the points available from the lesson's quizzes
func (l *Lesson) MaxScore() int {
	total := 0
	for _, s := range l.Steps {
		if s.Kind == StepQuiz {
			total += s.Quiz.Points
		}
	}
	return total
}

// Count returns the number of steps of the given kind
func (l *Lesson) Count(kind StepKind) int {
	n := 0
	for _, s := range l.Steps {
		if s.Kind == kind {
			n++
		}
	}
	return n
}
