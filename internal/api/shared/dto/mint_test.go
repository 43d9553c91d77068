package dto

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestMintRequest_Validate(t *testing.T) {
	tests := []struct {
		name              string
		req               MintRequest
		expectedRecipient *common.Address
		expectedTimeout   time.Duration
		expectErr         bool
	}{
		{
			name: "empty body uses defaults",
			req:  MintRequest{},
		},
		{
			name: "recipient and timeout",
			req: MintRequest{
				Recipient:           strPtr("0x2222222222222222222222222222222222222222"),
				ConfirmationTimeout: "90s",
			},
			expectedRecipient: func() *common.Address {
				a := common.HexToAddress("0x2222222222222222222222222222222222222222")
				return &a
			}(),
			expectedTimeout: 90 * time.Second,
		},
		{
			name:      "recipient is not an address",
			req:       MintRequest{Recipient: strPtr("maria.eth")},
			expectErr: true,
		},
		{
			name:      "empty recipient",
			req:       MintRequest{Recipient: strPtr("")},
			expectErr: true,
		},
		{
			name:      "unparsable timeout",
			req:       MintRequest{ConfirmationTimeout: "soon"},
			expectErr: true,
		},
		{
			name:      "negative timeout",
			req:       MintRequest{ConfirmationTimeout: "-5s"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipient, timeout, err := tt.req.Validate()
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedRecipient, recipient)
			assert.Equal(t, tt.expectedTimeout, timeout)
		})
	}
}

func TestRecheckRequest_Validate(t *testing.T) {
	full := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	hash, err := RecheckRequest{TransactionHash: full}.Validate()
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(full), hash)

	for _, bad := range []string{"", "0xaaaa", full[2:], full + "aa", "0xzz" + full[4:]} {
		_, err := RecheckRequest{TransactionHash: bad}.Validate()
		assert.Error(t, err, bad)
	}
}
