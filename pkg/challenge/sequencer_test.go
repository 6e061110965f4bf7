package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideDefaultFlow(t *testing.T) {
	seq := NewSequencer()

	tests := []struct {
		name    string
		history []Step
		want    Decision
	}{
		{
			name:    "empty history issues code challenge",
			history: nil,
			want:    Decision{Action: ActionIssueChallenge, Challenge: KindOneTimeCode},
		},
		{
			name:    "correct first code grants tokens",
			history: []Step{{Kind: KindOneTimeCode, Passed: true}},
			want:    Decision{Action: ActionGrantTokens},
		},
		{
			name:    "wrong first code issues a fresh challenge",
			history: []Step{{Kind: KindOneTimeCode, Passed: false}},
			want:    Decision{Action: ActionIssueChallenge, Challenge: KindOneTimeCode},
		},
		{
			name: "correct code on retry grants tokens",
			history: []Step{
				{Kind: KindOneTimeCode, Passed: false},
				{Kind: KindOneTimeCode, Passed: true},
			},
			want: Decision{Action: ActionGrantTokens},
		},
		{
			name: "two wrong codes fail",
			history: []Step{
				{Kind: KindOneTimeCode, Passed: false},
				{Kind: KindOneTimeCode, Passed: false},
			},
			want: Decision{Action: ActionFail},
		},
		{
			name: "depth cap fails even with passed entries",
			history: []Step{
				{Kind: KindOneTimeCode, Passed: false},
				{Kind: KindOneTimeCode, Passed: false},
				{Kind: KindOneTimeCode, Passed: true},
			},
			want: Decision{Action: ActionFail},
		},
		{
			name:    "unknown challenge kind fails",
			history: []Step{{Kind: KindUnknown, Passed: true}},
			want:    Decision{Action: ActionFail},
		},
		{
			name:    "password step where a code step is expected fails",
			history: []Step{{Kind: KindPassword, Passed: true}},
			want:    Decision{Action: ActionFail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seq.Decide(tt.history))
		})
	}
}

func TestDecidePasswordFirstFactor(t *testing.T) {
	seq := NewSequencer(WithPasswordFirstFactor(), WithCodeRetries(0))

	tests := []struct {
		name    string
		history []Step
		want    Decision
	}{
		{
			name:    "empty history issues password challenge",
			history: nil,
			want:    Decision{Action: ActionIssueChallenge, Challenge: KindPassword},
		},
		{
			name:    "passed password issues code challenge",
			history: []Step{{Kind: KindPassword, Passed: true}},
			want:    Decision{Action: ActionIssueChallenge, Challenge: KindOneTimeCode},
		},
		{
			name:    "failed password fails the attempt",
			history: []Step{{Kind: KindPassword, Passed: false}},
			want:    Decision{Action: ActionFail},
		},
		{
			name:    "wrong kind in the password slot fails",
			history: []Step{{Kind: KindOneTimeCode, Passed: true}},
			want:    Decision{Action: ActionFail},
		},
		{
			name: "passed code after passed password grants tokens",
			history: []Step{
				{Kind: KindPassword, Passed: true},
				{Kind: KindOneTimeCode, Passed: true},
			},
			want: Decision{Action: ActionGrantTokens},
		},
		{
			name: "wrong code fails under the strict policy",
			history: []Step{
				{Kind: KindPassword, Passed: true},
				{Kind: KindOneTimeCode, Passed: false},
			},
			want: Decision{Action: ActionFail},
		},
		{
			name: "history beyond the cap fails unconditionally",
			history: []Step{
				{Kind: KindPassword, Passed: true},
				{Kind: KindOneTimeCode, Passed: true},
				{Kind: KindOneTimeCode, Passed: true},
			},
			want: Decision{Action: ActionFail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seq.Decide(tt.history))
		})
	}
}

func TestDecideIsPure(t *testing.T) {
	seq := NewSequencer()
	history := []Step{{Kind: KindOneTimeCode, Passed: false}}

	first := seq.Decide(history)
	second := seq.Decide(history)

	assert.Equal(t, first, second)
	assert.Equal(t, []Step{{Kind: KindOneTimeCode, Passed: false}}, history)
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindPassword, ParseKind("PASSWORD"))
	assert.Equal(t, KindOneTimeCode, ParseKind("CUSTOM_CHALLENGE"))
	assert.Equal(t, KindUnknown, ParseKind("SRP_A"))
	assert.Equal(t, KindUnknown, ParseKind(""))
}
