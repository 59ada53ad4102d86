package topic

var defaultTopics = []Topic{
	{Name: "Ordering Coffee", Description: "Order drinks at a cafe, ask about sizes and options, and pay at the counter."},
	{Name: "Restaurant", Description: "Make a reservation, order a meal, ask about the menu and request the bill."},
	{Name: "Shopping", Description: "Ask for sizes and prices, try things on, and handle exchanges and refunds."},
	{Name: "Airport", Description: "Check in, go through security, and deal with delays and gate changes."},
	{Name: "Hotel", Description: "Check in and out, ask for amenities, and report a problem with the room."},
	{Name: "Asking for Directions", Description: "Ask how to get somewhere, understand directions, and use public transport."},
	{Name: "Doctor's Appointment", Description: "Describe symptoms, answer a doctor's questions, and understand advice."},
	{Name: "Job Interview", Description: "Introduce yourself, talk about experience, and ask questions about the role."},
	{Name: "Making Friends", Description: "Start small talk, share hobbies, and make plans to meet again."},
	{Name: "Phone Call", Description: "Make and answer calls, leave a message, and ask someone to repeat or spell."},
}

// Default returns the built-in catalog of everyday situations
func Default() *Catalog {
	c, err := New(defaultTopics)
	if err != nil {
		panic(err)
	}
	return c
}
