package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		body   string
		want   string
	}{
		{
			name:   "amazon delivery",
			sender: "shipment-tracking@amazon.com",
			body:   "Your package is on the way",
			want:   "delivery",
		},
		{
			name:   "carrier keyword in body",
			sender: "noreply@example.com",
			body:   "Your FedEx shipment has been dispatched",
			want:   "delivery",
		},
		{
			name:   "flight booking",
			sender: "itinerary@united.com",
			body:   "Your flight UA123 is confirmed",
			want:   "travel",
		},
		{
			name:   "hotel via booking.com",
			sender: "confirmation@booking.com",
			body:   "Your stay is confirmed",
			want:   "travel",
		},
		{
			name:   "dentist appointment",
			sender: "office@dental.example",
			body:   "Your appointment is scheduled for Monday",
			want:   "appointment",
		},
		{
			name:   "concert ticket",
			sender: "orders@ticketmaster.com",
			body:   "Your concert ticket is attached",
			want:   "ticket",
		},
		{
			name:   "subscription renewal",
			sender: "billing@service.example",
			body:   "Your subscription renewal is due",
			want:   "subscription",
		},
		{
			name:   "no keywords defaults to appointment",
			sender: "friend@example.com",
			body:   "Hey, long time no see!",
			want:   "appointment",
		},
		{
			name:   "case insensitive",
			sender: "NOREPLY@AMAZON.COM",
			body:   "YOUR PACKAGE HAS SHIPPED",
			want:   "delivery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sender, tt.body))
		})
	}
}

// A body matching several rules resolves to the first category in rule
// order, so a shipped concert ticket is still a delivery.
func TestClassifyPriority(t *testing.T) {
	got := Classify("orders@example.com", "Your concert ticket package has shipped with UPS")
	assert.Equal(t, "delivery", got)

	got = Classify("noreply@example.com", "Flight booking appointment reminder")
	assert.Equal(t, "travel", got)
}

func TestClassifyIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "travel", Classify("x@airline.com", "see you soon"))
	}
}
