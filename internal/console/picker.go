package console

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/lexiqai/voice-tutor/internal/tutor"
)

// FreeFormLabel is the picker entry for conversation without a topic
const FreeFormLabel = "Free conversation"

// TopicSource lists topics in catalog order
type TopicSource interface {
	Topics() []string
	TopicDescription(name string) string
}

// TopicOptions builds picker entries, free conversation first
func TopicOptions(src TopicSource) []huh.Option[string] {
	names := src.Topics()
	opts := make([]huh.Option[string], 0, len(names)+1)
	opts = append(opts, huh.NewOption(FreeFormLabel, tutor.FreeForm))
	for _, name := range names {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s - %s", name, src.TopicDescription(name)), name))
	}
	return opts
}

// PickTopic asks the operator to choose a topic and returns its name
// The free conversation entry returns tutor.FreeForm
func PickTopic(src TopicSource) (string, error) {
	selected := tutor.FreeForm

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose a practice topic").
				Options(TopicOptions(src)...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("topic selection: %w", err)
	}
	return selected, nil
}

// Greeting returns the opening line for the chosen topic
// topicFormat carries a single %s for the topic name
func Greeting(topic, freeForm, topicFormat string) string {
	if topic == tutor.FreeForm {
		return freeForm
	}
	return fmt.Sprintf(topicFormat, topic)
}
