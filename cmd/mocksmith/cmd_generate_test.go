package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenFilename(t *testing.T) {
	assert.Equal(t, "01_login", screenFilename(0, "Login"))
	assert.Equal(t, "03_user_profile", screenFilename(2, "User Profile"))
	assert.Equal(t, "02_checkout_step_1", screenFilename(1, "Checkout / Step 1"))
	assert.Equal(t, "01_screen", screenFilename(0, "!!!"))
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", imageExt("image/png"))
	assert.Equal(t, ".jpg", imageExt("image/jpeg"))
	assert.Equal(t, ".webp", imageExt("image/webp"))
	assert.Equal(t, ".png", imageExt(""))
}
