package models

// TriggerPhrase represents one entry of the trigger-phrase catalog.
type TriggerPhrase struct {
	Phrase   string `json:"phrase" validate:"required,max=120"`
	Language string `json:"language" validate:"required,oneof=english spanish arabic french german"`
	Protocol string `json:"protocol" validate:"required,oneof=sos silent location_only"`
}

// PhraseCatalog is the full trigger-phrase catalog for a user.
type PhraseCatalog struct {
	Items []TriggerPhrase `json:"items"`
}

// PhraseReplaceRequest replaces the trigger-phrase catalog wholesale.
type PhraseReplaceRequest struct {
	Phrases []TriggerPhrase `json:"phrases" validate:"required,min=1"`
}
