package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickInputPrefersExactType(t *testing.T) {
	cfg := DefaultConfig()
	inputs := []inputInfo{
		{Index: 0, Type: "text", Name: "username", Visible: true},
		{Index: 1, Type: "email", Name: "whatever", Visible: true},
	}

	c, ok := pickInput(FieldEmail, inputs, cfg)
	require.True(t, ok)
	assert.Equal(t, 1, c.index)
	assert.Equal(t, "type=email", c.heuristic)
}

func TestPickInputAttrFallback(t *testing.T) {
	cfg := DefaultConfig()
	inputs := []inputInfo{
		{Index: 0, Type: "text", Name: "zip", Visible: true},
		{Index: 1, Type: "text", Placeholder: "Username or Email", Visible: true},
	}

	c, ok := pickInput(FieldEmail, inputs, cfg)
	require.True(t, ok)
	assert.Equal(t, 1, c.index)
	assert.Equal(t, "attr", c.heuristic)
}

func TestPickInputSkipsDenyListedEvenWithAllowMatch(t *testing.T) {
	cfg := DefaultConfig()
	// The site-search box often carries login-adjacent attributes.
	inputs := []inputInfo{
		{Index: 0, Type: "text", Name: "login-search", Class: "search-box", Visible: true},
	}

	_, ok := pickInput(FieldEmail, inputs, cfg)
	assert.False(t, ok)
}

func TestPickInputIgnoresInvisible(t *testing.T) {
	cfg := DefaultConfig()
	inputs := []inputInfo{
		{Index: 0, Type: "email", Name: "email", Visible: false},
		{Index: 1, Type: "text", Name: "email", Visible: true},
	}

	c, ok := pickInput(FieldEmail, inputs, cfg)
	require.True(t, ok)
	assert.Equal(t, 1, c.index)
}

func TestPickInputPasswordRequiresPasswordType(t *testing.T) {
	cfg := DefaultConfig()
	// A text input named "password" would echo the secret; it must
	// never be selected.
	inputs := []inputInfo{
		{Index: 0, Type: "text", Name: "password", Visible: true},
	}
	_, ok := pickInput(FieldPassword, inputs, cfg)
	assert.False(t, ok)

	inputs = append(inputs, inputInfo{Index: 1, Type: "password", Name: "pw", Visible: true})
	c, ok := pickInput(FieldPassword, inputs, cfg)
	require.True(t, ok)
	assert.Equal(t, 1, c.index)
}

func TestPickInputSkipsNonTextTypes(t *testing.T) {
	cfg := DefaultConfig()
	inputs := []inputInfo{
		{Index: 0, Type: "hidden", Name: "email", Visible: true},
		{Index: 1, Type: "checkbox", Name: "remember-login", Visible: true},
	}
	_, ok := pickInput(FieldEmail, inputs, cfg)
	assert.False(t, ok)
}

func TestPickInputEmptySnapshot(t *testing.T) {
	_, ok := pickInput(FieldEmail, nil, DefaultConfig())
	assert.False(t, ok)
}

func TestPickControlTextBeforeAttr(t *testing.T) {
	controls := []controlInfo{
		{Index: 0, Tag: "button", Class: "login-btn", Visible: true},
		{Index: 1, Tag: "button", Text: "Log In", Visible: true},
	}

	c, ok := pickControl(controls, []string{"log in"}, []string{"login"}, nil)
	require.True(t, ok)
	assert.Equal(t, 1, c.index)
	assert.Equal(t, "text", c.heuristic)
}

func TestPickControlAttrFallback(t *testing.T) {
	controls := []controlInfo{
		{Index: 0, Tag: "a", Href: "/members/signin", Visible: true},
	}

	c, ok := pickControl(controls, []string{"log in"}, []string{"signin"}, nil)
	require.True(t, ok)
	assert.Equal(t, "attr", c.heuristic)
}

func TestPickControlDenyList(t *testing.T) {
	controls := []controlInfo{
		{Index: 0, Tag: "a", Text: "Log in to Fantasy Team Search", Href: "/search", Visible: true},
	}

	_, ok := pickControl(controls, []string{"log in"}, nil, []string{"search"})
	assert.False(t, ok)
}

func TestPickSubmitPrefersSubmitType(t *testing.T) {
	cfg := DefaultConfig()
	controls := []controlInfo{
		{Index: 0, Tag: "button", Text: "Sign In", Visible: true},
		{Index: 1, Tag: "input", Type: "submit", Visible: true},
	}

	c, ok := pickSubmit(controls, cfg)
	require.True(t, ok)
	assert.Equal(t, 1, c.index)
	assert.Equal(t, "type=submit", c.heuristic)
}

func TestPickSubmitFallsBackToPhrases(t *testing.T) {
	cfg := DefaultConfig()
	controls := []controlInfo{
		{Index: 0, Tag: "button", Text: "Sign In", Visible: true},
	}

	c, ok := pickSubmit(controls, cfg)
	require.True(t, ok)
	assert.Equal(t, "text", c.heuristic)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("LoginEmail", []string{"email"}))
	assert.True(t, containsAny("the Password field", []string{"nope", "password"}))
	assert.False(t, containsAny("team search", []string{"email"}))
	assert.False(t, containsAny("anything", []string{""}))
	assert.False(t, containsAny("", []string{"email"}))
}
