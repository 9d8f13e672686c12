package validators

import "unilab/pkg/model"

func statusEnum() []string {
	out := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		out = append(out, string(s))
	}
	return out
}
