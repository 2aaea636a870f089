package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr string
	}{
		{
			name:  "array",
			input: `[{"id":"a","orderNumber":"1","status":"pending","customerInfo":{"name":"Ada","phone":"1"}}]`,
			want:  []string{"a"},
		},
		{
			name:  "envelope",
			input: `{"orders":[{"id":"a","status":"pending"},{"id":"b","status":"ready"}]}`,
			want:  []string{"a", "b"},
		},
		{
			name:  "empty array",
			input: ` [] `,
			want:  []string{},
		},
		{
			name:    "blank",
			input:   "  \n",
			wantErr: "empty snapshot",
		},
		{
			name:    "envelope without orders",
			input:   `{"items":[]}`,
			wantErr: `missing "orders"`,
		},
		{
			name:    "order without id",
			input:   `[{"status":"pending"}]`,
			wantErr: "order 0 has no id",
		},
		{
			name:    "scalar",
			input:   `42`,
			wantErr: "expected array or object",
		},
		{
			name:    "malformed",
			input:   `[{"id":`,
			wantErr: "decode snapshot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.IDs())
		})
	}
}

func TestParse_Fields(t *testing.T) {
	s, err := Parse([]byte(`[{"id":"a","orderNumber":"1042","status":"out_for_delivery","customerInfo":{"name":"Ada","phone":"555","email":"ada@example.com"}}]`))
	require.NoError(t, err)
	require.Len(t, s, 1)

	assert.Equal(t, Order{
		ID:          "a",
		OrderNumber: "1042",
		Status:      StatusOutForDelivery,
		CustomerInfo: CustomerInfo{
			Name:  "Ada",
			Phone: "555",
			Email: "ada@example.com",
		},
	}, s[0])
}

func TestOrder_Number(t *testing.T) {
	assert.Equal(t, "7", Order{ID: "x", OrderNumber: "7"}.Number())
	assert.Equal(t, "x", Order{ID: "x"}.Number())
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("lost").IsValid())
}
