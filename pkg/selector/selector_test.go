package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yeahttp "github.com/wesleyorama2/yea/http"
)

const page = `<html>
<head><title>Accounts</title></head>
<body>
  <ul id="accounts">
    <li class="account"><a href="/a/1">Account 1</a></li>
    <li class="account"><a href="/a/2">Account 2</a></li>
  </ul>
</body>
</html>`

func TestSelection_CSS(t *testing.T) {
	texts, err := Parse(page).CSS("li.account").Texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"Account 1", "Account 2"}, texts)

	href, ok := Parse(page).CSS("a").First().Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "/a/1", href)

	_, ok = Parse(page).CSS("a").Attr("missing")
	assert.False(t, ok)
}

func TestSelection_XPath(t *testing.T) {
	title, err := Parse(page).XPath("//title").Text()
	require.NoError(t, err)
	assert.Equal(t, "Accounts", title)

	sel := Parse(page).XPath("//ul").CSS("a")
	assert.Equal(t, 2, sel.Len())

	html, err := sel.First().HTML()
	require.NoError(t, err)
	assert.Equal(t, `<a href="/a/1">Account 1</a>`, html)
}

func TestSelection_InvalidQueries(t *testing.T) {
	sel := Parse(page).CSS("li[")
	assert.Error(t, sel.Err())
	_, err := sel.CSS("a").Texts()
	assert.ErrorContains(t, err, "invalid CSS selector")

	_, err = Parse(page).XPath("//[").Text()
	assert.ErrorContains(t, err, "invalid XPath expression")
}

func TestFieldTransformers(t *testing.T) {
	css, err := CSSField("accounts", "li.account a")
	require.NoError(t, err)
	xp, err := XPathField("title", "//title")
	require.NoError(t, err)

	resp := &yeahttp.Response{Status: 200, Body: page}
	out, err := css(resp)
	require.NoError(t, err)
	out, err = xp(out)
	require.NoError(t, err)

	assert.Equal(t, []string{"Account 1", "Account 2"}, out.Fields["accounts"])
	assert.Equal(t, []string{"Accounts"}, out.Fields["title"])

	first, err := out.Prop("accounts[0]")
	require.NoError(t, err)
	assert.Equal(t, "Account 1", first)

	_, err = CSSField("x", "li[")
	assert.Error(t, err)
	_, err = XPathField("x", "//[")
	assert.Error(t, err)
}
