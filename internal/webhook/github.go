package webhook

import "encoding/json"

// repositoryPeek reads only the repository of a payload, for the ledger
// row written before classification.
type repositoryPeek struct {
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

func repositoryName(payload []byte) string {
	var p repositoryPeek
	if err := json.Unmarshal(payload, &p); err != nil {
		return ""
	}
	return p.Repository.FullName
}
