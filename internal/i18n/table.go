package i18n

type entry struct {
	en, hi, od string
}

func (e entry) text(lang Language) string {
	switch lang {
	case Hindi:
		return e.hi
	case Odia:
		return e.od
	case English:
		return e.en
	}
	return ""
}

var translations = map[string]entry{
	// Navigation
	"dashboard":        {"Dashboard", "डैशबोर्ड", "ଡ୍ୟାସବୋର୍ଡ"},
	"gramJyoti":        {"Gram Jyoti", "ग्राम ज्योति", "ଗ୍ରାମ ଜ୍ୟୋତି"},
	"microgridMonitor": {"Microgrid Controller Monitor", "माइक्रोग्रिड नियंत्रक मॉनिटर", "ମାଇକ୍ରୋଗ୍ରିଡ୍ ନିୟନ୍ତ୍ରକ ମନିଟର"},

	// System status
	"online":       {"Online", "ऑनलाइन", "ଅନଲାଇନ୍"},
	"offline":      {"Offline", "ऑफलाइन", "ଅଫଲାଇନ୍"},
	"systemStatus": {"System Status", "सिस्टम स्थिति", "ସିଷ୍ଟମ୍ ସ୍ଥିତି"},

	// Solar generation
	"solarGeneration": {"Solar Generation", "सौर उत्पादन", "ସୌର ଉତ୍ପାଦନ"},
	"currentPower":    {"Current Power", "वर्तमान शक्ति", "ବର୍ତ୍ତମାନ ଶକ୍ତି"},
	"dailyGeneration": {"Daily Generation", "दैनिक उत्पादन", "ଦୈନିକ ଉତ୍ପାଦନ"},
	"totalGeneration": {"Total Generation", "कुल उत्पादन", "ମୋଟ ଉତ୍ପାଦନ"},

	// Battery
	"batteryStatus": {"Battery Status", "बैटरी स्थिति", "ବ୍ୟାଟେରୀ ସ୍ଥିତି"},
	"stateOfCharge": {"State of Charge", "चार्ज की स्थिति", "ଚାର୍ଜ ସ୍ଥିତି"},
	"charging":      {"Charging", "चार्जिंग", "ଚାର୍ଜିଙ୍ଗ"},
	"discharging":   {"Discharging", "डिस्चार्जिंग", "ଡିସଚାର୍ଜିଙ୍ଗ"},
	"chargingRate":  {"Charging Rate", "चार्ज दर", "ଚାର୍ଜ ଦର"},

	// Load consumption
	"loadConsumption":      {"Load Consumption", "लोड खपत", "ଲୋଡ୍ ଖର୍ଚ୍ଚ"},
	"totalLoad":            {"Total Load", "कुल लोड", "ମୋଟ ଲୋଡ୍"},
	"householdConsumption": {"Household Consumption", "घरेलू खपत", "ଘରେଲୁ ଖର୍ଚ୍ଚ"},

	// Grid
	"gridStatus":   {"Grid Status", "ग्रिड स्थिति", "ଗ୍ରିଡ୍ ସ୍ଥିତି"},
	"connected":    {"Connected", "कनेक्टेड", "ସଂଯୁକ୍ତ"},
	"disconnected": {"Disconnected", "डिसकनेक्टेड", "ବିଚ୍ଛିନ୍ନ"},

	// Alerts
	"alerts":   {"Alerts", "अलर्ट", "ଚେତାବନୀ"},
	"noAlerts": {"No active alerts", "कोई सक्रिय अलर्ट नहीं", "କୌଣସି ସକ୍ରିୟ ଚେତାବନୀ ନାହିଁ"},
	"critical": {"Critical", "गंभीर", "ଗୁରୁତର"},
	"warning":  {"Warning", "चेतावनी", "ଚେତାବନୀ"},

	// Units
	"kw":      {"kW", "किलोवाट", "କିଲୋୱାଟ"},
	"kwh":     {"kWh", "किलोवाट घंटा", "କିଲୋୱାଟ ଘଣ୍ଟା"},
	"percent": {"%", "%", "%"},

	// Load controls
	"loadControl":    {"Load Control", "लोड नियंत्रण", "ଲୋଡ୍ ନିୟନ୍ତ୍ରଣ"},
	"manualOverride": {"Manual Override", "मैन्युअल ओवरराइड", "ମାନୁଆଲ୍ ଓଭର୍‌ରାଇଡ୍"},
	"streetLights":   {"Street Lights", "सड़क की रोशनी", "ରାସ୍ତାର ଆଲୋକ"},
	"waterPump":      {"Water Pump", "पानी का पंप", "ପାଣି ପମ୍ପ"},
	"communityHall":  {"Community Hall", "सामुदायिक भवन", "ସମ୍ପ୍ରଦାୟ ହଲ୍"},
	"schoolLights":   {"School Lights", "स्कूल की रोशनी", "ବିଦ୍ୟାଳୟ ଆଲୋକ"},
	"healthCenter":   {"Health Center", "स्वास्थ्य केंद्र", "ସ୍ୱାସ୍ଥ୍ୟ କେନ୍ଦ୍ର"},
	"irrigationPump": {"Irrigation Pump", "सिंचाई पंप", "ଜଳସେଚନ ପମ୍ପ"},

	// Control states
	"turnOn":    {"Turn On", "चालू करें", "ଚାଲୁ କରନ୍ତୁ"},
	"turnOff":   {"Turn Off", "बंद करें", "ବନ୍ଦ କରନ୍ତୁ"},
	"auto":      {"Auto", "स्वचालित", "ସ୍ୱୟଂଚାଳିତ"},
	"manual":    {"Manual", "मैन्युअल", "ମାନୁଆଲ୍"},
	"scheduled": {"Scheduled", "निर्धारित", "ନିର୍ଦ୍ଧାରିତ"},

	// Status
	"running":          {"Running", "चालू", "ଚାଲୁଛି"},
	"stopped":          {"Stopped", "बंद", "ବନ୍ଦ"},
	"powerConsumption": {"Power Consumption", "ऊर्जा खपत", "ଶକ୍ତି ଖର୍ଚ୍ଚ"},

	// Schedule
	"schedule":  {"Schedule", "समयसूची", "ସମୟସୂଚୀ"},
	"duration":  {"Duration", "अवधि", "ଅବଧି"},
	"startTime": {"Start Time", "प्रारंभ समय", "ଆରମ୍ଭ ସମୟ"},
	"endTime":   {"End Time", "समाप्ति समय", "ସମାପ୍ତି ସମୟ"},

	// Time
	"lastUpdated": {"Last Updated", "अंतिम अपडेट", "ଶେଷ ଅପଡେଟ୍"},

	// Control notifications
	"emergencyShutdown":          {"Emergency Shutdown", "आपातकालीन शटडाउन", "ଜରୁରୀକାଳୀନ ବନ୍ଦ"},
	"emergencyShutdownActivated": {"Emergency shutdown activated - All devices turned off", "आपातकालीन शटडाउन सक्रिय - सभी उपकरण बंद", "ଜରୁରୀକାଳୀନ ବନ୍ଦ ସକ୍ରିୟ - ସମସ୍ତ ଉପକରଣ ବନ୍ଦ"},
	"controlFailed":              {"Failed to control device", "डिवाइस नियंत्रित करने में विफल", "ଉପକରଣ ନିୟନ୍ତ୍ରଣ ବିଫଳ"},
	"controlRejected":            {"Not under manual control", "मैन्युअल नियंत्रण में नहीं", "ମାନୁଆଲ୍ ନିୟନ୍ତ୍ରଣରେ ନାହିଁ"},
}
