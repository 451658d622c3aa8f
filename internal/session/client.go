package session

import (
	"context"
	"fmt"

	"github.com/aaronzipp/sussie-baka/internal/game"
	"github.com/aaronzipp/sussie-baka/internal/models"
	"github.com/aaronzipp/sussie-baka/internal/protocol"
	"github.com/aaronzipp/sussie-baka/internal/transport"
)

// Join connects to the host of code and waits until it admits the player
func Join(ctx context.Context, cfg Config, code string) (*Session, error) {
	code = game.NormalizeRoomCode(code)
	c, err := transport.Dial(ctx, cfg.Network, code)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	s := newSession(ModeClient, cfg)
	s.code = code
	s.host = c
	s.auth = clientAuthority{s: s}
	if err := s.handshake(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("join %s: %w", code, err)
	}
	go s.pump(c)
	s.logger.Printf("session %s: joined as %s", code, s.selfID)
	return s, nil
}

func (s *Session) handshake(ctx context.Context) error {
	if err := s.sendHost(protocol.MsgJoin, protocol.Join{Profile: s.cfg.Profile}); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, transport.ConnectTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", transport.ErrConnectFailed, ctx.Err())
		case b, ok := <-s.host.Messages():
			if !ok {
				return ErrHostDisconnected
			}
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				s.logger.Printf("session %s: dropping message: %v", s.code, err)
				continue
			}
			switch env.T {
			case protocol.MsgJoinAccepted:
				m, err := protocol.DecodePayload[protocol.JoinAccepted](env)
				if err != nil {
					return err
				}
				s.selfID = m.PlayerID
				s.state.ApplyRoster(m.Players)
				s.state.ApplySettings(m.Settings)
				return nil
			case protocol.MsgJoinRejected:
				m, err := protocol.DecodePayload[protocol.JoinRejected](env)
				if err != nil {
					return err
				}
				return fmt.Errorf("%w: %s", ErrJoinRejected, m.Reason)
			}
		}
	}
}

func (s *Session) sendHost(t string, payload any) error {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	if err := s.host.Send(b); err != nil {
		return fmt.Errorf("send %s: %w", t, err)
	}
	return nil
}

// sendMove reports the predicted local position while movement counts
func (s *Session) sendMove() {
	me := s.Self()
	if me == nil || !s.state.CanMove() {
		return
	}
	err := s.sendHost(protocol.MsgMove, protocol.Position{ID: me.ID, X: me.X, Y: me.Y, FacingRight: me.FacingRight})
	if err != nil && debug.Load() {
		s.logger.Printf("session %s: %v", s.code, err)
	}
}

func (s *Session) clientReceive(m inbound) {
	switch m.kind {
	case inClosed:
		s.fail(fmt.Errorf("room %s: %w", s.code, ErrHostDisconnected))
		return
	case inData:
	default:
		return
	}
	env, err := protocol.DecodeEnvelope(m.data)
	if err != nil {
		s.logger.Printf("session %s: dropping message: %v", s.code, err)
		return
	}
	if err := s.apply(env); err != nil {
		s.logger.Printf("session %s: dropping %s: %v", s.code, env.T, err)
	}
}

// apply mirrors one host broadcast into the local state
func (s *Session) apply(env protocol.Envelope) error {
	st := s.state
	switch env.T {
	case protocol.MsgRoster:
		m, err := protocol.DecodePayload[protocol.Roster](env)
		if err != nil {
			return err
		}
		for _, pos := range m.Players {
			if pos.ID == s.selfID {
				continue
			}
			if p := st.Player(pos.ID); p != nil {
				s.targets[pos.ID] = models.Point{X: pos.X, Y: pos.Y}
				p.FacingRight = pos.FacingRight
			}
		}
	case protocol.MsgPlayerJoined:
		m, err := protocol.DecodePayload[protocol.PlayerJoined](env)
		if err != nil {
			return err
		}
		if m.Player.ID != s.selfID {
			st.ApplyPlayerJoined(m.Player)
		}
	case protocol.MsgPlayerLeft:
		m, err := protocol.DecodePayload[protocol.PlayerLeft](env)
		if err != nil {
			return err
		}
		delete(s.targets, m.PlayerID)
		st.ApplyPlayerLeft(m.PlayerID)
	case protocol.MsgSettings:
		m, err := protocol.DecodePayload[protocol.SettingsChanged](env)
		if err != nil {
			return err
		}
		st.ApplySettings(m.Settings)
	case protocol.MsgGameStarted:
		m, err := protocol.DecodePayload[protocol.GameStarted](env)
		if err != nil {
			return err
		}
		clear(s.targets)
		st.ApplyGameStarted(m.Players, m.Tasks, m.Settings)
	case protocol.MsgMeetingStarted:
		m, err := protocol.DecodePayload[protocol.MeetingStarted](env)
		if err != nil {
			return err
		}
		st.ApplyMeetingStarted(m.CallerID, m.Players)
	case protocol.MsgVoteCast:
		m, err := protocol.DecodePayload[protocol.VoteCast](env)
		if err != nil {
			return err
		}
		st.ApplyVote(m.VoterID, m.TargetID)
	case protocol.MsgMeetingEnded:
		m, err := protocol.DecodePayload[protocol.MeetingEnded](env)
		if err != nil {
			return err
		}
		st.ApplyMeetingEnded(m.Result, m.Players)
	case protocol.MsgPlayerKilled:
		m, err := protocol.DecodePayload[protocol.PlayerKilled](env)
		if err != nil {
			return err
		}
		at := models.Point{X: m.X, Y: m.Y}
		st.ApplyKill(m.KillerID, m.TargetID, at)
		if m.KillerID == s.selfID {
			st.SetCooldown(s.selfID, st.Settings.KillCooldown)
		} else {
			s.targets[m.KillerID] = at
		}
		delete(s.targets, m.TargetID)
	case protocol.MsgSabotage:
		m, err := protocol.DecodePayload[protocol.SabotageChanged](env)
		if err != nil {
			return err
		}
		st.ApplySabotage(m.Sabotage)
	case protocol.MsgTaskProgress:
		m, err := protocol.DecodePayload[protocol.TaskProgress](env)
		if err != nil {
			return err
		}
		st.ApplyTaskProgress(m.Progress, m.PlayerID, m.TaskID)
	case protocol.MsgChatMessage:
		m, err := protocol.DecodePayload[protocol.ChatMessage](env)
		if err != nil {
			return err
		}
		st.ApplyChat(m.Message)
	case protocol.MsgGameEnded:
		m, err := protocol.DecodePayload[protocol.GameEnded](env)
		if err != nil {
			return err
		}
		st.ApplyGameEnded(m.Winner)
	case protocol.MsgJoinAccepted, protocol.MsgJoinRejected:
		// only meaningful during the handshake
	default:
		return fmt.Errorf("unexpected message type")
	}
	return nil
}

// interpolate moves every remote player a share of the way to its latest
// reported position
func (s *Session) interpolate() {
	for id, target := range s.targets {
		p := s.state.Player(id)
		if p == nil {
			delete(s.targets, id)
			continue
		}
		p.SetPos(p.Pos().Add(target.Sub(p.Pos()).Scale(protocol.InterpolationFactor)))
	}
}
