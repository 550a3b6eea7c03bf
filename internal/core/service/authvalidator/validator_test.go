package authvalidator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elnvault/eln-core/internal/core/service/authvalidator"
)

func TestValidateNormalizesDelimiterInSubject(t *testing.T) {
	provider := authvalidator.NewMockProvider([]authvalidator.MockUser{
		{Token: "tok-bob", Subject: "bob-smith", Groups: []string{"RESEARCHERS"}},
	})
	v := authvalidator.New(provider, func(groups []string) []string {
		return []string{"draft:*"}
	})

	u, err := v.Validate(context.Background(), "tok-bob")
	require.NoError(t, err)
	assert.Equal(t, "bob_smith", u.ID)
	assert.Contains(t, u.Permissions, "draft:*")
}

func TestValidateUnknownTokenFails(t *testing.T) {
	provider := authvalidator.NewMockProvider(nil)
	v := authvalidator.New(provider, nil)

	_, err := v.Validate(context.Background(), "nope")
	assert.Error(t, err)
}
