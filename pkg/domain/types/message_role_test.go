package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

func TestParseMessageRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.MessageRole
		wantErr bool
	}{
		{name: "user", input: "user", want: types.MessageRoleUser},
		{name: "assistant", input: "assistant", want: types.MessageRoleAssistant},
		{name: "system is rejected", input: "system", wantErr: true},
		{name: "empty is rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseMessageRole(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestSessionState(t *testing.T) {
	gt.Bool(t, types.SessionStateIdle.HasConversation()).False()
	gt.Bool(t, types.SessionStateActive.HasConversation()).True()
	gt.Bool(t, types.SessionStateEnding.HasConversation()).True()
	gt.Bool(t, types.SessionState("closed").IsValid()).False()
}
