package mockup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "const x = 1;", "const x = 1;"},
		{"plain fence", "```\nconst x = 1;\n```", "const x = 1;"},
		{"language tag", "```tsx\nconst x = 1;\n```", "const x = 1;"},
		{"html tag", "```html\n<!DOCTYPE html>\n```", "<!DOCTYPE html>"},
		{"surrounding whitespace", "  ```js\nlet y;\n```  ", "let y;"},
		{"tag-like first code line kept", "```\nimport React from 'react';\nexport default App;\n```", "import React from 'react';\nexport default App;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFence(tc.in))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Run("long enough", func(t *testing.T) {
		code, err := normalizeCode("```tsx\nexport default function Login() { return null; }\n```", 40)
		assert.NoError(t, err)
		assert.Equal(t, "export default function Login() { return null; }", code)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := normalizeCode("```\nok\n```", 40)
		assert.ErrorContains(t, err, "too short")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := normalizeCode("", 1)
		assert.Error(t, err)
	})
}
