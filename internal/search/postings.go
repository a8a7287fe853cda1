package search

import (
	"encoding/json"
	"os"

	"github.com/seekmatch/jobmatcher/internal/model"
)

// Postings is an ordered list of normalized job postings, in the search
// provider's relevance order.
type Postings struct {
	Items []*model.JobPosting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *model.JobPosting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
