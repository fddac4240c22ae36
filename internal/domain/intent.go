package domain

import "encoding/json"

// IntentType is the discriminator of a ChatIntent.
type IntentType string

// IntentType constants.
const (
	IntentQuestion   IntentType = "question"
	IntentEdit       IntentType = "edit"
	IntentExplain    IntentType = "explain"
	IntentRegenerate IntentType = "regenerate"
	IntentGeneral    IntentType = "general"
)

// ChatIntent is the classified purpose of a chat message. The set of
// implementations is closed to this package.
type ChatIntent interface {
	Type() IntentType
	isChatIntent()
}

// QuestionIntent asks about blueprint content, possibly across sections.
type QuestionIntent struct {
	Topic    string    `json:"topic"`
	Sections []Section `json:"sections"`
}

// EditIntent requests a change to one field of one section.
type EditIntent struct {
	Section       Section `json:"section"`
	Field         string  `json:"field"`
	DesiredChange string  `json:"desiredChange"`
}

// ExplainIntent asks why the blueprint says what it says.
type ExplainIntent struct {
	Section       Section `json:"section"`
	Field         string  `json:"field"`
	WhatToExplain string  `json:"whatToExplain"`
}

// RegenerateIntent asks for a section to be produced again.
type RegenerateIntent struct {
	Section      Section `json:"section"`
	Instructions string  `json:"instructions"`
}

// GeneralIntent is anything that does not target blueprint content.
type GeneralIntent struct {
	Topic string `json:"topic"`
}

func (QuestionIntent) Type() IntentType   { return IntentQuestion }
func (EditIntent) Type() IntentType       { return IntentEdit }
func (ExplainIntent) Type() IntentType    { return IntentExplain }
func (RegenerateIntent) Type() IntentType { return IntentRegenerate }
func (GeneralIntent) Type() IntentType    { return IntentGeneral }

func (QuestionIntent) isChatIntent()   {}
func (EditIntent) isChatIntent()       {}
func (ExplainIntent) isChatIntent()    {}
func (RegenerateIntent) isChatIntent() {}
func (GeneralIntent) isChatIntent()    {}

// MarshalJSON adds the "type" discriminator.
func (i QuestionIntent) MarshalJSON() ([]byte, error) {
	type alias QuestionIntent
	if i.Sections == nil {
		i.Sections = []Section{}
	}
	return marshalTagged(IntentQuestion, alias(i))
}

// MarshalJSON adds the "type" discriminator.
func (i EditIntent) MarshalJSON() ([]byte, error) {
	type alias EditIntent
	return marshalTagged(IntentEdit, alias(i))
}

// MarshalJSON adds the "type" discriminator.
func (i ExplainIntent) MarshalJSON() ([]byte, error) {
	type alias ExplainIntent
	return marshalTagged(IntentExplain, alias(i))
}

// MarshalJSON adds the "type" discriminator.
func (i RegenerateIntent) MarshalJSON() ([]byte, error) {
	type alias RegenerateIntent
	return marshalTagged(IntentRegenerate, alias(i))
}

// MarshalJSON adds the "type" discriminator.
func (i GeneralIntent) MarshalJSON() ([]byte, error) {
	type alias GeneralIntent
	return marshalTagged(IntentGeneral, alias(i))
}

func marshalTagged(t IntentType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typ, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}
