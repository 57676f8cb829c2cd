package mediameta

// Version is the semantic version of the mediameta library.
const Version = "0.1.0"
