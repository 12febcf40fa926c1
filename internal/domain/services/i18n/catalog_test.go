package i18n

import (
	"strings"
	"testing"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

func TestNewCatalogValidates(t *testing.T) {
	if _, err := NewCatalog(); err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
}

func TestEveryPromptResolvesForEverySupportedLanguage(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	for key := range prompts {
		for _, lang := range SupportedLanguages {
			if got := c.Prompt(key.flow, key.step, lang); got == "" {
				t.Errorf("Prompt(%s, %s, %s) resolved to empty", key.flow, key.step, lang)
			}
		}
	}
}

func TestEveryMessageResolvesForEverySupportedLanguage(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	for id := range messages {
		for _, lang := range SupportedLanguages {
			if got := c.Message(id, lang); got == "" {
				t.Errorf("Message(%s, %s) resolved to empty", id, lang)
			}
		}
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	c, _ := NewCatalog()

	got := c.Message(MsgGreeting, "de")
	want := c.Message(MsgGreeting, English)
	if got != want {
		t.Errorf("fallback = %q, want english %q", got, want)
	}
}

func TestPromptInterpolation(t *testing.T) {
	c, _ := NewCatalog()

	got := c.Prompt(models.FlowTransfer, models.StepAskAmount, French, "698765432")
	if !strings.Contains(got, "698765432") {
		t.Errorf("prompt did not interpolate argument: %q", got)
	}
	if strings.Contains(got, "%s") {
		t.Errorf("prompt left placeholder unfilled: %q", got)
	}
}

func TestUnknownPromptKeyIsEmpty(t *testing.T) {
	c, _ := NewCatalog()

	if got := c.Prompt(models.FlowTransfer, models.StepAskName, English); got != "" {
		t.Errorf("unregistered prompt key returned %q", got)
	}
}
