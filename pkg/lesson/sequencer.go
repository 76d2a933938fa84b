package lesson

import (
	"errors"
	"fmt"
)

var (
	ErrNotQuiz          = errors.New("lesson: current step is not a quiz")
	ErrNotFlashcard     = errors.New("lesson: current step is not a flashcard")
	ErrAlreadyAnswered  = errors.New("lesson: quiz already answered")
	ErrChoiceOutOfRange = errors.New("lesson: choice out of range")
	ErrFinished         = errors.New("lesson: no current step")
)

// Result is the outcome of answering a quiz
type Result struct {
	Choice  int
	Correct bool
	Points  int // points awarded, 0 when wrong
}

// Sequencer walks a learner through a lesson one step at a time.
// Each quiz can be graded once; revisiting it returns the stored result.
type Sequencer struct {
	lesson  *Lesson
	idx     int
	results map[int]Result
	flipped map[int]bool
	score   int
}

// NewSequencer starts at the first step of l
func NewSequencer(l *Lesson) *Sequencer {
	return &Sequencer{
		lesson:  l,
		results: make(map[int]Result),
		flipped: make(map[int]bool),
	}
}

// Lesson returns the lesson being played
func (s *Sequencer) Lesson() *Lesson {
	return s.lesson
}

// Index returns the position of the current step
func (s *Sequencer) Index() int {
	return s.idx
}

// Current returns the current step; ok is false once the lesson is done
func (s *Sequencer) Current() (Step, bool) {
	if s.Done() {
		return Step{}, false
	}
	return s.lesson.Steps[s.idx], true
}

// Done reports whether the learner moved past the last step
func (s *Sequencer) Done() bool {
	return s.idx >= len(s.lesson.Steps)
}

// Next advances one step. It returns false if already done.
func (s *Sequencer) Next() bool {
	if s.Done() {
		return false
	}
	s.idx++
	return true
}

// Prev goes back one step. It returns false at the first step.
func (s *Sequencer) Prev() bool {
	if s.idx == 0 {
		return false
	}
	s.idx--
	return true
}

// Answer grades the current quiz with the given choice index
func (s *Sequencer) Answer(choice int) (Result, error) {
	step, ok := s.Current()
	if !ok {
		return Result{}, ErrFinished
	}
	if step.Kind != StepQuiz {
		return Result{}, ErrNotQuiz
	}
	if prev, ok := s.results[s.idx]; ok {
		return prev, ErrAlreadyAnswered
	}
	if choice < 0 || choice >= len(step.Quiz.Choices) {
		return Result{}, fmt.Errorf("%w: %d of %d", ErrChoiceOutOfRange, choice, len(step.Quiz.Choices))
	}

	res := Result{Choice: choice, Correct: step.Quiz.Choices[choice].Correct}
	if res.Correct {
		res.Points = step.Quiz.Points
		s.score += res.Points
	}
	s.results[s.idx] = res
	return res, nil
}

// Result returns the stored result for the quiz at index i
func (s *Sequencer) Result(i int) (Result, bool) {
	r, ok := s.results[i]
	return r, ok
}

// Flip turns the current flashcard over and reports which side now shows
// (true = back).
func (s *Sequencer) Flip() (bool, error) {
	step, ok := s.Current()
	if !ok {
		return false, ErrFinished
	}
	if step.Kind != StepFlashcard {
		return false, ErrNotFlashcard
	}
	s.flipped[s.idx] = !s.flipped[s.idx]
	return s.flipped[s.idx], nil
}

// Score returns the points earned so far
func (s *Sequencer) Score() int {
	return s.score
}

// Progress returns the number of answered quizzes and the total
func (s *Sequencer) Progress() (answered, total int) {
	return len(s.results), s.lesson.Count(StepQuiz)
}
