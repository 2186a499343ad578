package usecase

// ParseSummary is exported for testing
var ParseSummary = parseSummary

// FailedSummary is exported for testing
var FailedSummary = failedSummary
