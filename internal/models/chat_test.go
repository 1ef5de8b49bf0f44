package models

import (
	"strings"
	"testing"
)

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *ChatRequest
		wantErr bool
	}{
		{"no messages", &ChatRequest{}, true},
		{"valid user message", &ChatRequest{Messages: []ChatMessage{{Role: "user", Content: "hi"}}}, false},
		{"unknown role", &ChatRequest{Messages: []ChatMessage{{Role: "tool", Content: "hi"}}}, true},
		{"empty content", &ChatRequest{Messages: []ChatMessage{{Role: "user", Content: ""}}}, true},
		{"too long", &ChatRequest{Messages: []ChatMessage{{Role: "user", Content: strings.Repeat("a", MaxMessageLength+1)}}}, true},
		{"max length", &ChatRequest{Messages: []ChatMessage{{Role: "user", Content: strings.Repeat("é", MaxMessageLength)}}}, false},
		{"assistant and system", &ChatRequest{Messages: []ChatMessage{
			{Role: "system", Content: "be nice"},
			{Role: "assistant", Content: "hello"},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatestUserMessage(t *testing.T) {
	msgs := []ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second"},
		{Role: "assistant", Content: "reply 2"},
	}
	got, ok := LatestUserMessage(msgs)
	if !ok || got.Content != "second" {
		t.Errorf("LatestUserMessage = %+v, %v", got, ok)
	}

	if _, ok := LatestUserMessage([]ChatMessage{{Role: "assistant", Content: "x"}}); ok {
		t.Error("expected no user message")
	}
}

func TestBestMatch(t *testing.T) {
	var zero BestMatch
	if zero.IsFound() {
		t.Error("zero value should be Absent")
	}
	if zero.Score() != 0 {
		t.Errorf("Absent score = %v", zero.Score())
	}

	m := Found(ScoredEntry{Entry: KnowledgeEntry{ID: "a", Question: "q"}, Score: 0.7})
	se, ok := m.Entry()
	if !ok || se.Entry.ID != "a" || m.Score() != 0.7 {
		t.Errorf("Found = %+v, %v", se, ok)
	}
	if _, ok := Absent().Entry(); ok {
		t.Error("Absent().Entry() should report false")
	}
}
