// Package parser normalizes merged policy documents into policy summaries.
//
// The expected document shape is
//
//	{
//	  "example.com": {
//	    "ads": {"action": "block_page", "message": "Ads are not allowed"}
//	  },
//	  "resourceGroups": {
//	    "news": {"members": ["example.com", "cdn.example.com"]}
//	  }
//	}
//
// Parsing is total. Anything that does not fit is dropped and reported as an
// Issue so callers can log it; an empty summary tells the caller that nothing
// usable arrived.
package parser
