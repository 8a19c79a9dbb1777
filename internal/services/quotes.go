package services

import "math/rand"

// motivationalQuotes accompany task notifications
var motivationalQuotes = []string{
	"The secret of getting ahead is getting started. - Mark Twain",
	"Don't watch the clock; do what it does. Keep going. - Sam Levenson",
	"The way to get started is to quit talking and begin doing. - Walt Disney",
	"It always seems impossible until it's done. - Nelson Mandela",
	"The future depends on what you do today. - Mahatma Gandhi",
	"The only way to do great work is to love what you do. - Steve Jobs",
	"Start where you are. Use what you have. Do what you can. - Arthur Ashe",
	"Don't let yesterday take up too much of today. - Will Rogers",
	"You don't have to be great to start, but you have to start to be great. - Zig Ziglar",
	"The harder you work for something, the greater you'll feel when you achieve it.",
	"Success is not final, failure is not fatal: It is the courage to continue that counts. - Winston Churchill",
	"Believe you can and you're halfway there. - Theodore Roosevelt",
	"Do what you can, with what you have, where you are. - Theodore Roosevelt",
	"The best way to predict the future is to create it. - Peter Drucker",
	"Small progress is still progress.",
	"Focus on being productive instead of busy.",
	"Don't count the days, make the days count. - Muhammad Ali",
	"Opportunities don't happen. You create them. - Chris Grosser",
	"The key to success is to focus on goals, not obstacles.",
	"The successful warrior is the average person, with laser-like focus. - Bruce Lee",
	"You are never too old to set another goal or to dream a new dream. - C.S. Lewis",
	"Quality is not an act, it is a habit. - Aristotle",
}

// RandomQuote returns a random motivational quote
func RandomQuote() string {
	return motivationalQuotes[rand.Intn(len(motivationalQuotes))]
}
