package slack

import (
	"fmt"

	"github.com/brysontyrrell/voltron/internal/webhook"
)

// Transformer is a pure function from raw event fields to a rendered message.
// A missing required field fails construction; no partial message is emitted.
type Transformer func(fields map[string]any) (*Message, error)

// style is the fixed presentation for one event family.
type style struct {
	title string
	color ColorTag
	icon  string
}

var styles = map[webhook.EventType]style{
	webhook.EventComputerAdded:              {title: "Computer Added", color: ColorGreen, icon: "images/computers_64.png"},
	webhook.EventComputerCheckIn:            {title: "Computer Check-In", color: ColorGray, icon: "images/computers_64.png"},
	webhook.EventComputerInventoryCompleted: {title: "Computer Inventory Complete", color: ColorGray, icon: "images/computers_64.png"},
	webhook.EventJSSShutdown:                {title: "Jamf Pro Shutdown", color: ColorRed, icon: "images/jss_64.png"},
	webhook.EventJSSStartup:                 {title: "Jamf Pro Startup", color: ColorGreen, icon: "images/jss_64.png"},
	webhook.EventMobileDeviceCheckIn:        {title: "Mobile Device Check-In", color: ColorGray, icon: "images/mobiledevices_64.png"},
	webhook.EventMobileDeviceEnrolled:       {title: "Mobile Device Enrolled", color: ColorGreen, icon: "images/mobiledevices_64.png"},
	webhook.EventMobileDeviceUnEnrolled:     {title: "Mobile Device Un-Enrolled", color: ColorYellow, icon: "images/mobiledevices_64.png"},
	webhook.EventPatchSoftwareTitleUpdated:  {title: "Patch Definition Update", color: ColorYellow, icon: "images/patch_64.png"},
	webhook.EventRestAPIOperation:           {title: "REST API Operation", color: ColorGray, icon: "images/jamfapi_64.png"},
}

// Transformers returns the full set of chat transformers keyed by event type.
// The map is built fresh so callers can treat it as their own fixed registry.
func Transformers() map[webhook.EventType]Transformer {
	return map[webhook.EventType]Transformer{
		webhook.EventComputerAdded:              ComputerAdded,
		webhook.EventComputerCheckIn:            ComputerCheckIn,
		webhook.EventComputerInventoryCompleted: ComputerInventoryCompleted,
		webhook.EventJSSShutdown:                JSSShutdown,
		webhook.EventJSSStartup:                 JSSStartup,
		webhook.EventMobileDeviceCheckIn:        MobileDeviceCheckIn,
		webhook.EventMobileDeviceEnrolled:       MobileDeviceEnrolled,
		webhook.EventMobileDeviceUnEnrolled:     MobileDeviceUnEnrolled,
		webhook.EventPatchSoftwareTitleUpdated:  PatchSoftwareTitleUpdated,
		webhook.EventRestAPIOperation:           RestAPIOperation,
	}
}

// ComputerAdded renders the 'ComputerAdded' event.
func ComputerAdded(fields map[string]any) (*Message, error) {
	return deviceMessage(webhook.EventComputerAdded, fields,
		"A new computer has been added!", "Computer Name")
}

// ComputerCheckIn renders the 'ComputerCheckIn' event.
func ComputerCheckIn(fields map[string]any) (*Message, error) {
	return deviceMessage(webhook.EventComputerCheckIn, fields,
		"A computer check-in has occurred.", "Computer Name")
}

// ComputerInventoryCompleted renders the 'ComputerInventoryCompleted' event.
func ComputerInventoryCompleted(fields map[string]any) (*Message, error) {
	return deviceMessage(webhook.EventComputerInventoryCompleted, fields,
		"A computer has submitted inventory.", "Computer Name")
}

// JSSShutdown renders the 'JSSShutdown' event.
func JSSShutdown(fields map[string]any) (*Message, error) {
	return serverMessage(webhook.EventJSSShutdown, fields,
		"The Jamf Pro web app *%s* has initiated a shutdown.")
}

// JSSStartup renders the 'JSSStartup' event.
func JSSStartup(fields map[string]any) (*Message, error) {
	return serverMessage(webhook.EventJSSStartup, fields,
		"The Jamf Pro web app *%s* has started up.")
}

// MobileDeviceCheckIn renders the 'MobileDeviceCheckIn' event.
func MobileDeviceCheckIn(fields map[string]any) (*Message, error) {
	return deviceMessage(webhook.EventMobileDeviceCheckIn, fields,
		"A mobile device check-in has occurred.", "Device Name")
}

// MobileDeviceEnrolled renders the 'MobileDeviceEnrolled' event.
func MobileDeviceEnrolled(fields map[string]any) (*Message, error) {
	return deviceMessage(webhook.EventMobileDeviceEnrolled, fields,
		"A mobile device been enrolled!", "Device Name")
}

// MobileDeviceUnEnrolled renders the 'MobileDeviceUnEnrolled' event.
func MobileDeviceUnEnrolled(fields map[string]any) (*Message, error) {
	return deviceMessage(webhook.EventMobileDeviceUnEnrolled, fields,
		"A mobile device been un-enrolled!", "Device Name")
}

// PatchSoftwareTitleUpdated renders the 'PatchSoftwareTitleUpdated' event.
func PatchSoftwareTitleUpdated(fields map[string]any) (*Message, error) {
	ev, err := webhook.NewPatchEvent(string(webhook.EventPatchSoftwareTitleUpdated), fields)
	if err != nil {
		return nil, err
	}
	s := styles[webhook.EventPatchSoftwareTitleUpdated]
	text := fmt.Sprintf(
		"Jamf Pro has received a new patch definition update.\n"+
			"<%s|Click here to view the report>\n"+
			"*Software Title:* %s | *New Version:* %s",
		ev.ReportURL, ev.Name, ev.LatestVersion,
	)
	return &Message{Title: s.title, Text: text, Color: s.color, Icon: s.icon}, nil
}

// RestAPIOperation renders the 'RestAPIOperation' event.
func RestAPIOperation(fields map[string]any) (*Message, error) {
	ev, err := webhook.NewRESTOperationEvent(string(webhook.EventRestAPIOperation), fields)
	if err != nil {
		return nil, err
	}
	s := styles[webhook.EventRestAPIOperation]
	text := fmt.Sprintf(
		"A REST API operation has been performed.\n"+
			"*API Object Type* %s | *Name:* %s | *ID:* %s\n"+
			"*User:* %s | *Action:* %s | *Success?* %t",
		ev.ObjectTypeName, ev.ObjectName, ev.ObjectID,
		ev.AuthorizedUsername, ev.OperationType, ev.Successful,
	)
	return &Message{Title: s.title, Text: text, Color: s.color, Icon: s.icon}, nil
}

func deviceMessage(eventType webhook.EventType, fields map[string]any, lead, nameLabel string) (*Message, error) {
	ev, err := webhook.NewDeviceEvent(string(eventType), fields)
	if err != nil {
		return nil, err
	}
	s := styles[eventType]
	text := fmt.Sprintf(
		"%s\n*ID:* %s | *Serial Number:* %s\n*%s:* %s | *User:* %s",
		lead, ev.JSSID, ev.SerialNumber, nameLabel, ev.DeviceName, ev.Username,
	)
	return &Message{Title: s.title, Text: text, Color: s.color, Icon: s.icon}, nil
}

func serverMessage(eventType webhook.EventType, fields map[string]any, format string) (*Message, error) {
	ev, err := webhook.NewServerEvent(string(eventType), fields)
	if err != nil {
		return nil, err
	}
	s := styles[eventType]
	text := fmt.Sprintf(format, ev.JSSURL)
	if ev.IsClusterMaster {
		text += " *(master)*"
	}
	return &Message{Title: s.title, Text: text, Color: s.color, Icon: s.icon}, nil
}
