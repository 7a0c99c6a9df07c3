package zai

import (
	"encoding/json"
	"testing"
)

func TestBuildMessages_Empty(t *testing.T) {
	messages := BuildMessages(Prompt{}, nil)
	if len(messages) != 0 {
		t.Errorf("BuildMessages() returned %d messages, want 0", len(messages))
	}
}

func TestBuildMessages_SingleUserTurn(t *testing.T) {
	messages := BuildMessages(Prompt{Text: "Hello"}, nil)
	if len(messages) != 1 {
		t.Fatalf("BuildMessages() returned %d messages, want 1", len(messages))
	}
	if messages[0].Role != RoleUser {
		t.Errorf("role = %q, want %q", messages[0].Role, RoleUser)
	}
	if messages[0].Content != "Hello" {
		t.Errorf("content = %q, want Hello", messages[0].Content)
	}
}

func TestBuildMessages_SystemFirst(t *testing.T) {
	messages := BuildMessages(Prompt{System: "You are terse.", Text: "Hi"}, nil)
	if len(messages) != 2 {
		t.Fatalf("BuildMessages() returned %d messages, want 2", len(messages))
	}
	if messages[0].Role != RoleSystem || messages[0].Content != "You are terse." {
		t.Errorf("first message = %+v, want system message", messages[0])
	}
	if messages[1].Role != RoleUser {
		t.Errorf("last message role = %q, want user", messages[1].Role)
	}
}

func TestBuildMessages_HistoryOrdering(t *testing.T) {
	conversation := &Conversation{Turns: []Turn{
		{Prompt: "first question", Response: "first answer"},
		{Prompt: "second question", Response: "second answer"},
	}}

	messages := BuildMessages(Prompt{System: "sys", Text: "third question"}, conversation)

	// system + 2x2 history + final user
	if len(messages) != 6 {
		t.Fatalf("BuildMessages() returned %d messages, want 6", len(messages))
	}

	want := []struct {
		role    Role
		content string
	}{
		{RoleSystem, "sys"},
		{RoleUser, "first question"},
		{RoleAssistant, "first answer"},
		{RoleUser, "second question"},
		{RoleAssistant, "second answer"},
		{RoleUser, "third question"},
	}
	for i, w := range want {
		if messages[i].Role != w.role || messages[i].Content != w.content {
			t.Errorf("messages[%d] = {%s %q}, want {%s %q}", i, messages[i].Role, messages[i].Content, w.role, w.content)
		}
	}
}

func TestBuildMessages_PartialTurns(t *testing.T) {
	conversation := &Conversation{Turns: []Turn{
		{Prompt: "unanswered question"},
		{Response: "orphan answer"},
	}}

	messages := BuildMessages(Prompt{Text: "now"}, conversation)
	if len(messages) != 3 {
		t.Fatalf("BuildMessages() returned %d messages, want 3", len(messages))
	}
	if messages[0].Role != RoleUser || messages[1].Role != RoleAssistant || messages[2].Role != RoleUser {
		t.Errorf("roles = %s,%s,%s, want user,assistant,user", messages[0].Role, messages[1].Role, messages[2].Role)
	}
}

func TestBuildMessages_DoesNotMutateInputs(t *testing.T) {
	conversation := &Conversation{Turns: []Turn{{Prompt: "q", Response: "a"}}}
	prompt := Prompt{System: "sys", Text: "hello"}

	BuildMessages(prompt, conversation)

	if len(conversation.Turns) != 1 || conversation.Turns[0].Prompt != "q" {
		t.Error("conversation was mutated")
	}
	if prompt.Text != "hello" || prompt.System != "sys" {
		t.Error("prompt was mutated")
	}
}

func TestMessage_MarshalPlainContent(t *testing.T) {
	data, err := json.Marshal(Message{Role: RoleUser, Content: "hi"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"role":"user","content":"hi"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestMessage_MarshalWithAttachments(t *testing.T) {
	msg := Message{
		Role:    RoleUser,
		Content: "describe this",
		Attachments: []Attachment{
			{ImageURL: "https://example.com/image.jpg"},
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(decoded.Content) != 2 {
		t.Fatalf("content parts = %d, want 2", len(decoded.Content))
	}
	if decoded.Content[0].Type != "text" || decoded.Content[0].Text != "describe this" {
		t.Errorf("first part = %+v, want text part", decoded.Content[0])
	}
	if decoded.Content[1].Type != "image_url" || decoded.Content[1].ImageURL == nil ||
		decoded.Content[1].ImageURL.URL != "https://example.com/image.jpg" {
		t.Errorf("second part = %+v, want image_url part", decoded.Content[1])
	}
}

func TestMessage_EmptyAttachmentsMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(Message{Role: RoleUser, Content: "hi", Attachments: []Attachment{}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"role":"user","content":"hi"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
