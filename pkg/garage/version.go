package garage

// Version is the release version of the garage module.
const Version = "0.1.0"
