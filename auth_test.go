package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

func TestAuthSessionSignInAndRestore(t *testing.T) {
	gokeyring.MockInit()
	kv := newMemoryKV()

	session := NewAuthSession(kv, newTestLogger())
	assert.False(t, session.SignedIn())
	assert.Empty(t, session.Token())

	require.NoError(t, session.SignIn(User{ID: 1, Email: "dev@moa.works", Name: "개발자", UserType: userTypePerson, Token: "tok-1"}))
	assert.True(t, session.SignedIn())
	assert.Equal(t, "tok-1", session.Token())
	assert.True(t, session.IsPerson())
	assert.False(t, session.IsCompany())

	// The token never lands in the database.
	raw, ok, err := kv.Get(kvKeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "tok-1")

	var stored User
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "dev@moa.works", stored.Email)
	assert.Empty(t, stored.Token)

	// A fresh session over the same store restores profile and token.
	restored := NewAuthSession(kv, newTestLogger())
	require.True(t, restored.SignedIn())
	assert.Equal(t, "개발자", restored.User().Name)
	assert.Equal(t, "tok-1", restored.Token())
}

func TestAuthSessionSignOut(t *testing.T) {
	gokeyring.MockInit()
	kv := newMemoryKV()

	session := NewAuthSession(kv, newTestLogger())
	require.NoError(t, session.SignIn(User{ID: 2, Email: "co@moa.works", UserType: userTypeCompany, Token: "tok-2"}))
	assert.True(t, session.IsCompany())

	require.NoError(t, session.SignOut())
	assert.False(t, session.SignedIn())
	assert.Nil(t, session.User())

	_, ok, err := kv.Get(kvKeyUser)
	require.NoError(t, err)
	assert.False(t, ok)

	token, err := GetTokenFromKeyring()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuthSessionClearsCorruptRecord(t *testing.T) {
	gokeyring.MockInit()
	kv := newMemoryKV()
	require.NoError(t, kv.Set(kvKeyUser, "}}}garbage"))

	session := NewAuthSession(kv, newTestLogger())
	assert.False(t, session.SignedIn())

	_, ok, err := kv.Get(kvKeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenEnvOverridesKeyring(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, SaveTokenToKeyring("keyring-token"))
	t.Setenv("MOA_TOKEN", "env-token")

	token, err := GetTokenFromKeyring()
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}

func TestDeleteTokenIsIdempotent(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, DeleteTokenFromKeyring())
	require.NoError(t, SaveTokenToKeyring("tok"))
	require.NoError(t, DeleteTokenFromKeyring())
	require.NoError(t, DeleteTokenFromKeyring())
}
