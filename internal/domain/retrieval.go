package domain

// Collection names a knowledge-base partition.
type Collection string

const (
	CollectionGrammar    Collection = "grammar"
	CollectionVocabulary Collection = "vocabulary"
	CollectionExamples   Collection = "examples"
)

func (c Collection) String() string { return string(c) }

func (c Collection) IsValid() bool {
	switch c {
	case CollectionGrammar, CollectionVocabulary, CollectionExamples:
		return true
	}
	return false
}

// LanguageGeneral marks documents that apply to every target language.
const LanguageGeneral = "General"

// Document is a knowledge-base entry to be indexed.
type Document struct {
	ID       string
	Content  string
	Language string
}

// RetrievedItem is a document returned by a similarity search.
type RetrievedItem struct {
	ID         string
	Content    string
	Collection Collection
	Language   string
}
