package zai

import "encoding/json"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is an image reference for vision models.
type Attachment struct {
	ImageURL string
}

// Message is one role-tagged entry in the provider's message sequence.
// Attachments is always present, possibly empty; a message with attachments
// marshals as multi-part content, otherwise as a plain string.
type Message struct {
	Role        Role
	Content     string
	Attachments []Attachment
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Attachments) == 0 {
		return json.Marshal(struct {
			Role    Role   `json:"role"`
			Content string `json:"content"`
		}{m.Role, m.Content})
	}

	parts := make([]contentPart, 0, len(m.Attachments)+1)
	parts = append(parts, contentPart{Type: "text", Text: m.Content})
	for _, a := range m.Attachments {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURLPart{URL: a.ImageURL},
		})
	}

	return json.Marshal(struct {
		Role    Role          `json:"role"`
		Content []contentPart `json:"content"`
	}{m.Role, parts})
}

// Prompt is the host-side input for a single completion.
type Prompt struct {
	System      string
	Text        string
	Attachments []Attachment
}

// Turn is one prior exchange in a conversation.
type Turn struct {
	Prompt   string
	Response string
}

// Conversation is the replayable history preceding the current prompt.
type Conversation struct {
	Turns []Turn
}

// BuildMessages converts a prompt and optional conversation history into
// the provider's ordered message sequence: system message first (if any),
// prior turns as user/assistant pairs in chronological order, current
// prompt last. Pure function; inputs are not mutated. An entirely empty
// prompt with no history yields an empty sequence.
func BuildMessages(prompt Prompt, conversation *Conversation) []Message {
	var messages []Message

	if prompt.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: prompt.System})
	}

	if conversation != nil {
		for _, turn := range conversation.Turns {
			if turn.Prompt != "" {
				messages = append(messages, Message{Role: RoleUser, Content: turn.Prompt})
			}
			if turn.Response != "" {
				messages = append(messages, Message{Role: RoleAssistant, Content: turn.Response})
			}
		}
	}

	if prompt.Text != "" || len(prompt.Attachments) > 0 {
		messages = append(messages, Message{
			Role:        RoleUser,
			Content:     prompt.Text,
			Attachments: prompt.Attachments,
		})
	}

	return messages
}
