package device

// DefaultDefinitions returns the six community loads of a standard
// Gram Jyoti site, in dashboard order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:       "street-lights",
			NameKey:  "streetLights",
			Icon:     "lightbulb",
			Status:   StatusOn,
			Mode:     ModeAuto,
			PowerKW:  kw(2.4),
			Schedule: &ScheduleWindow{Start: TimeOfDay{Hour: 18}, End: TimeOfDay{Hour: 6}},
		},
		{
			ID:      "water-pump",
			NameKey: "waterPump",
			Icon:    "droplets",
			Status:  StatusOff,
			Mode:    ModeManual,
			PowerKW: kw(3.2),
		},
		{
			ID:      "community-hall",
			NameKey: "communityHall",
			Icon:    "building",
			Status:  StatusOff,
			Mode:    ModeManual,
			PowerKW: kw(1.8),
		},
		{
			ID:       "school-lights",
			NameKey:  "schoolLights",
			Icon:     "graduation-cap",
			Status:   StatusScheduled,
			Mode:     ModeScheduled,
			PowerKW:  kw(1.5),
			Schedule: &ScheduleWindow{Start: TimeOfDay{Hour: 8}, End: TimeOfDay{Hour: 16}},
		},
		{
			ID:      "health-center",
			NameKey: "healthCenter",
			Icon:    "heart",
			Status:  StatusOn,
			Mode:    ModeManual,
			PowerKW: kw(0.8),
		},
		{
			ID:      "irrigation-pump",
			NameKey: "irrigationPump",
			Icon:    "sprout",
			Status:  StatusOff,
			Mode:    ModeAuto,
			PowerKW: kw(4.5),
		},
	}
}

func kw(v float64) *float64 { return &v }
