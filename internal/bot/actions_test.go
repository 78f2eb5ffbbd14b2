package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		data string
		want Action
	}{
		{"menu:select_car", Action{Kind: ActionSelectCar}},
		{"menu:my_prizes", Action{Kind: ActionMyPrizes}},
		{"user:select_prize", Action{Kind: ActionSelectPrize}},
		{"user:prize:3", Action{Kind: ActionPrize, ID: 3}},
		{"admin:export_contacts", Action{Kind: ActionAdminExportMenu}},
		{"admin:export:week", Action{Kind: ActionAdminExport, Arg: "week"}},
		{"approve_42", Action{Kind: ActionApprove, ID: 42}},
		{"reject_42", Action{Kind: ActionReject, ID: 42}},
		{"reply_42", Action{Kind: ActionReply, ID: 42}},
		{"remove_fav_5", Action{Kind: ActionRemoveFavorite, ID: 5}},
		{"del_sub_9", Action{Kind: ActionDeleteSubscription, ID: 9}},
		{"delete_9", Action{Kind: ActionDeleteAd, ID: 9}},
		{"description_9", Action{Kind: ActionDescription, ID: 9}},
		{"prev_ad", Action{Kind: ActionPrevAd}},
		{"next_ad", Action{Kind: ActionNextAd}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := DecodeAction(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.data, got.Encode())
		})
	}
}

func TestDecodeAction_Unknown(t *testing.T) {
	for _, data := range []string{
		"",
		"menu:unknown",
		"user:prize:",
		"user:prize:abc",
		"buy_",
		"buy_-1",
		"buy_0",
		"admin:export:",
		"admin:export:a:b",
		"next_ad_1",
		"back_to_main",
	} {
		t.Run(data, func(t *testing.T) {
			_, err := DecodeAction(data)
			assert.ErrorIs(t, err, ErrUnknownAction)
		})
	}
}

func TestActionHelpers(t *testing.T) {
	assert.Equal(t, "buy_7", DataID(ActionBuy, 7))
	assert.Equal(t, "admin:stats", Data(ActionAdminStats))
	assert.Equal(t, "", Action{Kind: ActionUnknown}.Encode())
}
