package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

// runRounds is the question loop: present, open the buzz window, award the
// answer window to the buzzer, judge, apply the result, pace, advance. The
// end flag is honored at the top of each iteration so an in-flight question
// always resolves.
func (s *Session) runRounds(ctx context.Context) {
	number := 0
	for len(s.questions) > 0 && !s.ending {
		if ctx.Err() != nil {
			return
		}
		question := s.questions[0]
		s.questions = s.questions[1:]
		number++
		if !s.playQuestion(ctx, number, question) {
			return
		}
	}
}

// playQuestion runs one question to resolution. Returns false only when the
// context was cancelled mid-question.
func (s *Session) playQuestion(ctx context.Context, number int, question domain.Question) bool {
	s.announce(Announcement{
		Type:     AnnounceQuestion,
		Number:   number,
		Question: question.Text,
		Parts:    question.PartCount(),
		ImageURL: question.ImageURL,
	})

	buzzer, ok := s.awaitBuzz(ctx)
	if !ok {
		return false
	}

	outcome := OutcomeNoBuzz
	var answerer *domain.Player
	if buzzer != nil {
		answerer = buzzer
		team := s.ledger.teamByID(buzzer.TeamID)
		s.announce(Announcement{
			Type:    AnnounceBuzz,
			Player:  buzzer.Name,
			Team:    team.Name,
			Message: fmt.Sprintf("%s has buzzed in for %s team!", buzzer.Name, team.Name),
		})

		responses, complete, alive := s.collectAnswers(ctx, question, buzzer.ID)
		if !alive {
			return false
		}
		switch {
		case !complete:
			outcome = OutcomeTimeout
		case s.judge.Correct(question.Answers, question.PartCount(), responses):
			outcome = OutcomeCorrect
		default:
			outcome = OutcomeIncorrect
		}
	}

	s.resolve(number, question, outcome, answerer)

	// Pacing pause before the next question; control commands stay live.
	return s.pause(ctx, s.settings.ResolveDelay)
}

// awaitBuzz opens the buzz window. The first buzz from a registered player
// wins; later buzzes and everything else buzz-like are ignored. Returns
// (nil, true) when the window elapses with no valid buzz and (nil, false) on
// cancellation.
func (s *Session) awaitBuzz(ctx context.Context) (*domain.Player, bool) {
	timer := time.NewTimer(s.settings.BuzzWindow)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-timer.C:
			return nil, true
		case ev := <-s.events:
			switch ev.Kind {
			case EventBuzz:
				if player, joined := s.ledger.Player(ev.PlayerID); joined {
					return player, true
				}
			case EventControl:
				s.handleControl(ev)
			}
		}
	}
}

// collectAnswers gathers up to partCount submissions from the buzzed-in
// player inside a window of AnswerPerPart per part. Submissions from anyone
// else are ignored. complete is false when the window closed first.
func (s *Session) collectAnswers(ctx context.Context, question domain.Question, buzzerID string) (responses []string, complete, alive bool) {
	parts := question.PartCount()
	timer := time.NewTimer(time.Duration(parts) * s.settings.AnswerPerPart)
	defer timer.Stop()

	responses = make([]string, 0, parts)
	for len(responses) < parts {
		select {
		case <-ctx.Done():
			return responses, false, false
		case <-timer.C:
			return responses, false, true
		case ev := <-s.events:
			switch ev.Kind {
			case EventAnswer:
				if ev.PlayerID == buzzerID {
					responses = append(responses, ev.Text)
				}
			case EventControl:
				s.handleControl(ev)
			}
		}
	}
	return responses, true, true
}

// resolve applies the outcome to the ledger and reports it. A nobuzz outcome
// attributes nothing to anyone, so the counters stay untouched; otherwise the
// answer is revealed unless it was guessed.
func (s *Session) resolve(number int, question domain.Question, outcome Outcome, answerer *domain.Player) {
	result := Announcement{
		Type:    AnnounceResult,
		Number:  number,
		Outcome: outcome,
	}
	if outcome != OutcomeCorrect {
		result.Answers = question.Answers
	}

	switch outcome {
	case OutcomeNoBuzz:
		result.Message = "Nobody buzzed in! Moving on..."
	case OutcomeCorrect:
		s.ledger.Record(outcome, answerer.ID)
		result.Player = answerer.Name
		result.Message = fmt.Sprintf("%s has just scored themselves and their team 1 point!", answerer.Name)
	case OutcomeIncorrect, OutcomeTimeout:
		s.ledger.Record(outcome, answerer.ID)
		result.Player = answerer.Name
		if s.settings.LosePoints {
			result.Message = fmt.Sprintf("%s has just lost their team 1 point!", answerer.Name)
		} else {
			result.Message = fmt.Sprintf("Unfortunately, %s did not answer correctly!", answerer.Name)
		}
	}

	s.announce(result)
	s.log.Debug("question resolved",
		zap.Int("number", number),
		zap.String("outcome", string(outcome)))
}

// pause waits out the inter-question delay while still servicing control
// commands. Returns false on cancellation.
func (s *Session) pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case ev := <-s.events:
			if ev.Kind == EventControl {
				s.handleControl(ev)
			}
		}
	}
}
