package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dealdesk/dealdesk/internal/models"
)

func TestContactCompletion(t *testing.T) {
	tests := []struct {
		name    string
		contact models.Contact
		want    models.PocStatus
	}{
		{
			name:    "empty contact is red",
			contact: models.Contact{},
			want:    models.PocRed,
		},
		{
			name:    "whitespace only is red",
			contact: models.Contact{Name: "  ", Email: "\t"},
			want:    models.PocRed,
		},
		{
			name: "all required plus email is green",
			contact: models.Contact{
				Name:            "Priya Nair",
				Designation:     "CFO",
				LinkedinProfile: "https://linkedin.com/in/priyanair",
				Email:           "priya@acme.example.com",
			},
			want: models.PocGreen,
		},
		{
			name: "all required plus phone is green",
			contact: models.Contact{
				Name:            "Priya Nair",
				Designation:     "CFO",
				LinkedinProfile: "https://linkedin.com/in/priyanair",
				Phone:           "+91 98000 00000",
			},
			want: models.PocGreen,
		},
		{
			name: "all required but no optional is amber",
			contact: models.Contact{
				Name:            "Priya Nair",
				Designation:     "CFO",
				LinkedinProfile: "https://linkedin.com/in/priyanair",
			},
			want: models.PocAmber,
		},
		{
			name:    "partial required is amber",
			contact: models.Contact{Name: "Priya Nair"},
			want:    models.PocAmber,
		},
		{
			name:    "only optional filled is amber",
			contact: models.Contact{Email: "priya@acme.example.com"},
			want:    models.PocAmber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContactCompletion(tt.contact))
		})
	}
}

func TestCompletionStatus(t *testing.T) {
	green := models.Contact{
		Name: "A", Designation: "CEO", LinkedinProfile: "https://linkedin.com/in/a", Email: "a@x.com",
	}
	amber := models.Contact{Name: "B"}

	assert.Equal(t, models.PocRed, CompletionStatus(nil))
	assert.Equal(t, models.PocRed, CompletionStatus([]models.Contact{}))
	assert.Equal(t, models.PocRed, CompletionStatus([]models.Contact{{}}))
	assert.Equal(t, models.PocAmber, CompletionStatus([]models.Contact{amber, {}}))

	// Best grade wins across the list.
	assert.Equal(t, models.PocGreen, CompletionStatus([]models.Contact{{}, amber, green}))
}
