package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Tier   string `json:"tier" validate:"required,tier"`
	Status string `json:"status" validate:"omitempty,bagstatus"`
	Email  string `json:"email" validate:"required,email"`
}

func TestDomainTags(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(sample{Tier: "prive", Email: "a@b.co"}))
	require.NoError(t, v.Validate(sample{Tier: "signature", Status: "rented", Email: "a@b.co"}))

	err := v.Validate(sample{Tier: "gold", Status: "lost", Email: "x"})
	require.Error(t, err)
	f := Fields(err)
	require.Equal(t, "tier", f["tier"])
	require.Equal(t, "bagstatus", f["status"])
	require.Equal(t, "email", f["email"])
}
