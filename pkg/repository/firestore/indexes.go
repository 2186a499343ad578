package firestore

import "github.com/m-mizutani/fireconf"

// IndexConfig returns the composite indexes the queries of this package need.
// prefix must match the one given to WithCollectionPrefix.
func IndexConfig(prefix string) *fireconf.Config {
	names := &collections{prefix: prefix}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: names.conversations(),
				Indexes: []fireconf.Index{
					// ListByPatient: patient_id ASC, id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "patient_id", Order: fireconf.OrderAscending},
							{Path: "id", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: names.messages(),
				Indexes: []fireconf.Index{
					// List: conversation_id ASC, id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "conversation_id", Order: fireconf.OrderAscending},
							{Path: "id", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: names.history(),
				Indexes: []fireconf.Index{
					// ListVisits: patient_id ASC, visit_date ASC, conversation_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "patient_id", Order: fireconf.OrderAscending},
							{Path: "visit_date", Order: fireconf.OrderAscending},
							{Path: "conversation_id", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
