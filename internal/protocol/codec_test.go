package protocol

import (
	"errors"
	"testing"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

func TestEncodeDecode(t *testing.T) {
	b, err := Encode(MsgPlayerKilled, PlayerKilled{KillerID: "a", TargetID: "b", X: 10, Y: 20})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.T != MsgPlayerKilled {
		t.Fatalf("type = %q", env.T)
	}
	got, err := DecodePayload[PlayerKilled](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.TargetID != "b" || got.X != 10 || got.Y != 20 {
		t.Fatalf("payload = %+v", got)
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	if _, err := Encode("", Vote{}); err == nil {
		t.Fatalf("expected error for empty type")
	}
	if _, err := Encode(MsgVote, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	if _, err := DecodeEnvelope(nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty: err = %v", err)
	}
	for _, raw := range []string{"not json", `{"p":{}}`, `[1,2]`} {
		if _, err := DecodeEnvelope([]byte(raw)); err == nil {
			t.Fatalf("DecodeEnvelope(%q) succeeded", raw)
		}
	}
	if _, err := DecodePayload[Vote](Envelope{T: MsgVote}); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestGameStartedCarriesRolesAndTasks(t *testing.T) {
	in := GameStarted{
		Players:  []models.Player{{ID: "a", Role: models.RoleImpostor}, {ID: "b", Role: models.RoleCrewmate}},
		Tasks:    map[string][]models.Task{"b": {{ID: "t1", Location: models.Point{X: 1, Y: 2}}}},
		Settings: models.DefaultSettings(),
	}
	b, err := Encode(MsgGameStarted, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, _ := DecodeEnvelope(b)
	out, err := DecodePayload[GameStarted](env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Players[0].Role != models.RoleImpostor || out.Tasks["b"][0].Location.Y != 2 {
		t.Fatalf("decoded = %+v", out)
	}
	if out.Settings != models.DefaultSettings() {
		t.Fatalf("settings = %+v", out.Settings)
	}
}

func TestCadenceConstants(t *testing.T) {
	if MoveEveryFrames != 3 {
		t.Fatalf("MoveEveryFrames = %d, want 3", MoveEveryFrames)
	}
	if RosterEvery != 6 {
		t.Fatalf("RosterEvery = %d, want 6", RosterEvery)
	}
	if RosterEvery%MoveEveryFrames != 0 {
		t.Fatalf("RosterEvery %% MoveEveryFrames != 0")
	}
}
