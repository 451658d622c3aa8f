package game

import (
	"sort"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

// TallyVotes counts votes by target. The single highest target is ejected;
// a tie for the maximum, a skip win, or no votes at all eject no one.
func TallyVotes(votes map[string]string) models.VoteResult {
	voteCount := make(map[string]int)
	for _, target := range votes {
		voteCount[target]++
	}

	// sorted so the result does not depend on map order
	targets := make([]string, 0, len(voteCount))
	for target := range voteCount {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	maxVotes := 0
	var leaders []string
	for _, target := range targets {
		count := voteCount[target]
		if count > maxVotes {
			maxVotes = count
			leaders = []string{target}
		} else if count == maxVotes {
			leaders = append(leaders, target)
		}
	}

	result := models.VoteResult{
		Tally: voteCount,
		Tie:   len(leaders) > 1,
	}
	if len(leaders) == 1 && leaders[0] != models.SkipVote {
		result.Ejected = leaders[0]
	}
	return result
}

// CastVote records voter's single vote during an open meeting
func (s *State) CastVote(voterID, targetID string) bool {
	if s.Phase != models.PhaseMeeting || s.Meeting.Result != nil {
		return false
	}
	voter := s.Player(voterID)
	if voter == nil || voter.IsDead {
		return false
	}
	if _, voted := s.Meeting.Votes[voterID]; voted {
		return false
	}
	if targetID != models.SkipVote {
		target := s.Player(targetID)
		if target == nil || target.IsDead {
			return false
		}
	}
	s.Meeting.Votes[voterID] = targetID
	s.emit(Event{Kind: EventVoteCast, PlayerID: voterID, TargetID: targetID})
	return true
}

func (s *State) allVoted() bool {
	for _, p := range s.Players {
		if p.IsDead {
			continue
		}
		if _, ok := s.Meeting.Votes[p.ID]; !ok {
			return false
		}
	}
	return true
}

func (s *State) concludeMeeting() {
	result := TallyVotes(s.Meeting.Votes)
	s.applyMeetingResult(&result)
	s.emit(Event{Kind: EventMeetingEnded, Result: &result, Players: s.Snapshot()})
}

func (s *State) applyMeetingResult(result *models.VoteResult) {
	s.Meeting.Result = result
	s.Meeting.ResultsTimer = ResultsSeconds
	if result.Ejected == "" {
		return
	}
	if p := s.Player(result.Ejected); p != nil && !p.IsDead {
		p.IsDead = true
		p.IsBodyReported = true
		p.DeathX, p.DeathY = p.X, p.Y
	}
}

func (s *State) resumePlay() {
	for _, p := range s.Players {
		p.X, p.Y = SpawnX, SpawnY
	}
	s.Meeting = models.Meeting{}
	s.Phase = models.PhasePlaying
	s.emit(Event{Kind: EventRoundResumed})
}
