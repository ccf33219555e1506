// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

// Command classes.
const (
	ClassNoOperation                     Class = 0x00
	ClassBasic                           Class = 0x20
	ClassControllerReplication           Class = 0x21
	ClassApplicationStatus               Class = 0x22
	ClassSwitchBinary                    Class = 0x25
	ClassSwitchMultilevel                Class = 0x26
	ClassSwitchAll                       Class = 0x27
	ClassSwitchToggleBinary              Class = 0x28
	ClassSwitchToggleMultilevel          Class = 0x29
	ClassSceneActivation                 Class = 0x2b
	ClassSceneActuatorConf               Class = 0x2c
	ClassSceneControllerConf             Class = 0x2d
	ClassSensorBinary                    Class = 0x30
	ClassSensorMultilevel                Class = 0x31
	ClassMeter                           Class = 0x32
	ClassColorSwitch                     Class = 0x33
	ClassMeterPulse                      Class = 0x35
	ClassThermostatMode                  Class = 0x40
	ClassThermostatOperatingState        Class = 0x42
	ClassThermostatSetpoint              Class = 0x43
	ClassThermostatFanMode               Class = 0x44
	ClassThermostatFanState              Class = 0x45
	ClassClimateControlSchedule          Class = 0x46
	ClassThermostatSetBack               Class = 0x47
	ClassDoorLockLogging                 Class = 0x4c
	ClassScheduleEntryLock               Class = 0x4e
	ClassBasicWindowCovering             Class = 0x50
	ClassTransportService                Class = 0x55
	ClassCRC16Encap                      Class = 0x56
	ClassAssociationGroupInformation     Class = 0x59
	ClassDeviceResetLocally              Class = 0x5a
	ClassCentralScene                    Class = 0x5b
	ClassZwavePlusInfo                   Class = 0x5e
	ClassMultiChannel                    Class = 0x60
	ClassDoorLock                        Class = 0x62
	ClassUserCode                        Class = 0x63
	ClassSupervision                     Class = 0x6c
	ClassConfiguration                   Class = 0x70
	ClassAlarm                           Class = 0x71
	ClassManufacturerSpecific            Class = 0x72
	ClassPowerlevel                      Class = 0x73
	ClassProtection                      Class = 0x75
	ClassLock                            Class = 0x76
	ClassNodeNaming                      Class = 0x77
	ClassFirmware                        Class = 0x7a
	ClassRemoteAssociationActivate       Class = 0x7c
	ClassBattery                         Class = 0x80
	ClassClock                           Class = 0x81
	ClassHail                            Class = 0x82
	ClassWakeUp                          Class = 0x84
	ClassAssociation                     Class = 0x85
	ClassVersion                         Class = 0x86
	ClassIndicator                       Class = 0x87
	ClassProprietary                     Class = 0x88
	ClassLanguage                        Class = 0x89
	ClassTimeParameters                  Class = 0x8b
	ClassMultiInstanceAssociation        Class = 0x8e
	ClassMultiCmd                        Class = 0x8f
	ClassEnergyProduction                Class = 0x90
	ClassManufacturerProprietary         Class = 0x91
	ClassScreenMd                        Class = 0x92
	ClassScreenAttributes                Class = 0x93
	ClassSimpleAvControl                 Class = 0x94
	ClassSecurity                        Class = 0x98
	ClassAssociationCommandConfiguration Class = 0x9b
	ClassSensorAlarm                     Class = 0x9c
	ClassSilenceAlarm                    Class = 0x9d
	ClassSecurity2                       Class = 0x9f
	ClassMark                            Class = 0xef
)

// Command keys.
var (
	NoOperationSet                            = Key{ClassNoOperation, 0x00}
	BasicSet                                  = Key{ClassBasic, 0x01}
	BasicGet                                  = Key{ClassBasic, 0x02}
	BasicReport                               = Key{ClassBasic, 0x03}
	ControllerReplicationTransferGroup        = Key{ClassControllerReplication, 0x31}
	ControllerReplicationTransferScene        = Key{ClassControllerReplication, 0x33}
	ApplicationStatusBusy                     = Key{ClassApplicationStatus, 0x01}
	ApplicationStatusRejectedRequest          = Key{ClassApplicationStatus, 0x02}
	SwitchBinarySet                           = Key{ClassSwitchBinary, 0x01}
	SwitchBinaryGet                           = Key{ClassSwitchBinary, 0x02}
	SwitchBinaryReport                        = Key{ClassSwitchBinary, 0x03}
	SwitchMultilevelSet                       = Key{ClassSwitchMultilevel, 0x01}
	SwitchMultilevelGet                       = Key{ClassSwitchMultilevel, 0x02}
	SwitchMultilevelReport                    = Key{ClassSwitchMultilevel, 0x03}
	SwitchMultilevelStartLevelChange          = Key{ClassSwitchMultilevel, 0x04}
	SwitchMultilevelStopLevelChange           = Key{ClassSwitchMultilevel, 0x05}
	SwitchMultilevelSupportedGet              = Key{ClassSwitchMultilevel, 0x06}
	SwitchMultilevelSupportedReport           = Key{ClassSwitchMultilevel, 0x07}
	SwitchAllSet                              = Key{ClassSwitchAll, 0x01}
	SwitchAllGet                              = Key{ClassSwitchAll, 0x02}
	SwitchAllReport                           = Key{ClassSwitchAll, 0x03}
	SwitchAllOn                               = Key{ClassSwitchAll, 0x04}
	SwitchAllOff                              = Key{ClassSwitchAll, 0x05}
	SwitchToggleBinarySet                     = Key{ClassSwitchToggleBinary, 0x01}
	SwitchToggleBinaryGet                     = Key{ClassSwitchToggleBinary, 0x02}
	SwitchToggleBinaryReport                  = Key{ClassSwitchToggleBinary, 0x03}
	SceneActivationSet                        = Key{ClassSceneActivation, 0x01}
	SceneActuatorConfSet                      = Key{ClassSceneActuatorConf, 0x01}
	SceneActuatorConfGet                      = Key{ClassSceneActuatorConf, 0x02}
	SceneActuatorConfReport                   = Key{ClassSceneActuatorConf, 0x03}
	SceneControllerConfSet                    = Key{ClassSceneControllerConf, 0x01}
	SceneControllerConfGet                    = Key{ClassSceneControllerConf, 0x02}
	SceneControllerConfReport                 = Key{ClassSceneControllerConf, 0x03}
	SensorBinaryGet                           = Key{ClassSensorBinary, 0x02}
	SensorBinaryReport                        = Key{ClassSensorBinary, 0x03}
	SensorMultilevelSupportedGet              = Key{ClassSensorMultilevel, 0x01}
	SensorMultilevelSupportedReport           = Key{ClassSensorMultilevel, 0x02}
	SensorMultilevelGet                       = Key{ClassSensorMultilevel, 0x04}
	SensorMultilevelReport                    = Key{ClassSensorMultilevel, 0x05}
	MeterGet                                  = Key{ClassMeter, 0x01}
	MeterReport                               = Key{ClassMeter, 0x02}
	MeterSupportedGet                         = Key{ClassMeter, 0x03}
	MeterSupportedReport                      = Key{ClassMeter, 0x04}
	MeterReset                                = Key{ClassMeter, 0x05}
	ColorSwitchSupportedGet                   = Key{ClassColorSwitch, 0x01}
	ColorSwitchSupportedReport                = Key{ClassColorSwitch, 0x02}
	ColorSwitchGet                            = Key{ClassColorSwitch, 0x03}
	ColorSwitchReport                         = Key{ClassColorSwitch, 0x04}
	ThermostatModeSet                         = Key{ClassThermostatMode, 0x01}
	ThermostatModeGet                         = Key{ClassThermostatMode, 0x02}
	ThermostatModeReport                      = Key{ClassThermostatMode, 0x03}
	ThermostatModeSupportedGet                = Key{ClassThermostatMode, 0x04}
	ThermostatModeSupportedReport             = Key{ClassThermostatMode, 0x05}
	ThermostatSetpointGet                     = Key{ClassThermostatSetpoint, 0x02}
	ThermostatSetpointReport                  = Key{ClassThermostatSetpoint, 0x03}
	ThermostatSetpointSupportedGet            = Key{ClassThermostatSetpoint, 0x04}
	ThermostatSetpointSupportedReport         = Key{ClassThermostatSetpoint, 0x05}
	DoorLockLoggingSupportedGet               = Key{ClassDoorLockLogging, 0x01}
	DoorLockLoggingSupportedReport            = Key{ClassDoorLockLogging, 0x02}
	DoorLockLoggingGet                        = Key{ClassDoorLockLogging, 0x03}
	DoorLockLoggingReport                     = Key{ClassDoorLockLogging, 0x04}
	AssociationGroupInformationNameGet        = Key{ClassAssociationGroupInformation, 0x01}
	AssociationGroupInformationNameReport     = Key{ClassAssociationGroupInformation, 0x02}
	AssociationGroupInformationInfoGet        = Key{ClassAssociationGroupInformation, 0x03}
	AssociationGroupInformationInfoReport     = Key{ClassAssociationGroupInformation, 0x04}
	AssociationGroupInformationListGet        = Key{ClassAssociationGroupInformation, 0x05}
	AssociationGroupInformationListReport     = Key{ClassAssociationGroupInformation, 0x06}
	CentralSceneSupportedGet                  = Key{ClassCentralScene, 0x01}
	CentralSceneSupportedReport               = Key{ClassCentralScene, 0x02}
	CentralSceneNotification                  = Key{ClassCentralScene, 0x03}
	ZwavePlusInfoGet                          = Key{ClassZwavePlusInfo, 0x01}
	ZwavePlusInfoReport                       = Key{ClassZwavePlusInfo, 0x02}
	MultiChannelGet                           = Key{ClassMultiChannel, 0x04}
	MultiChannelReport                        = Key{ClassMultiChannel, 0x05}
	MultiChannelEncap                         = Key{ClassMultiChannel, 0x06}
	MultiChannelEndPointGet                   = Key{ClassMultiChannel, 0x07}
	MultiChannelEndPointReport                = Key{ClassMultiChannel, 0x08}
	MultiChannelCapabilityGet                 = Key{ClassMultiChannel, 0x09}
	MultiChannelCapabilityReport              = Key{ClassMultiChannel, 0x0a}
	MultiChannelChannelEndPointFind           = Key{ClassMultiChannel, 0x0b}
	MultiChannelChannelEndPointFindReport     = Key{ClassMultiChannel, 0x0c}
	MultiChannelChannelEncap                  = Key{ClassMultiChannel, 0x0d}
	DoorLockSet                               = Key{ClassDoorLock, 0x01}
	DoorLockGet                               = Key{ClassDoorLock, 0x02}
	DoorLockReport                            = Key{ClassDoorLock, 0x03}
	DoorLockConfigurationSet                  = Key{ClassDoorLock, 0x04}
	DoorLockConfigurationGet                  = Key{ClassDoorLock, 0x05}
	DoorLockConfigurationReport               = Key{ClassDoorLock, 0x06}
	UserCodeSet                               = Key{ClassUserCode, 0x01}
	UserCodeGet                               = Key{ClassUserCode, 0x02}
	UserCodeReport                            = Key{ClassUserCode, 0x03}
	UserCodeNumberGet                         = Key{ClassUserCode, 0x04}
	UserCodeNumberReport                      = Key{ClassUserCode, 0x05}
	ConfigurationSet                          = Key{ClassConfiguration, 0x04}
	ConfigurationGet                          = Key{ClassConfiguration, 0x05}
	ConfigurationReport                       = Key{ClassConfiguration, 0x06}
	AlarmGet                                  = Key{ClassAlarm, 0x04}
	AlarmReport                               = Key{ClassAlarm, 0x05}
	AlarmSet                                  = Key{ClassAlarm, 0x06}
	AlarmSupportedGet                         = Key{ClassAlarm, 0x07}
	AlarmSupportedReport                      = Key{ClassAlarm, 0x08}
	ManufacturerSpecificGet                   = Key{ClassManufacturerSpecific, 0x04}
	ManufacturerSpecificReport                = Key{ClassManufacturerSpecific, 0x05}
	ManufacturerSpecificDeviceSpecificGet     = Key{ClassManufacturerSpecific, 0x06}
	ManufacturerSpecificDeviceSpecificReport  = Key{ClassManufacturerSpecific, 0x07}
	PowerlevelSet                             = Key{ClassPowerlevel, 0x01}
	PowerlevelGet                             = Key{ClassPowerlevel, 0x02}
	PowerlevelReport                          = Key{ClassPowerlevel, 0x03}
	PowerlevelTestNodeSet                     = Key{ClassPowerlevel, 0x04}
	PowerlevelTestNodeGet                     = Key{ClassPowerlevel, 0x05}
	PowerlevelTestNodeGetReport               = Key{ClassPowerlevel, 0x06}
	ProtectionSet                             = Key{ClassProtection, 0x01}
	ProtectionGet                             = Key{ClassProtection, 0x02}
	ProtectionReport                          = Key{ClassProtection, 0x03}
	LockSet                                   = Key{ClassLock, 0x01}
	LockGet                                   = Key{ClassLock, 0x02}
	LockReport                                = Key{ClassLock, 0x03}
	NodeNamingSet                             = Key{ClassNodeNaming, 0x01}
	NodeNamingGet                             = Key{ClassNodeNaming, 0x02}
	NodeNamingReport                          = Key{ClassNodeNaming, 0x03}
	NodeNamingLocationSet                     = Key{ClassNodeNaming, 0x04}
	NodeNamingLocationGet                     = Key{ClassNodeNaming, 0x05}
	NodeNamingLocationReport                  = Key{ClassNodeNaming, 0x06}
	FirmwareMetadataGet                       = Key{ClassFirmware, 0x01}
	FirmwareMetadataReport                    = Key{ClassFirmware, 0x02}
	BatteryGet                                = Key{ClassBattery, 0x02}
	BatteryReport                             = Key{ClassBattery, 0x03}
	ClockSet                                  = Key{ClassClock, 0x04}
	ClockGet                                  = Key{ClassClock, 0x05}
	ClockReport                               = Key{ClassClock, 0x06}
	HailHail                                  = Key{ClassHail, 0x01}
	WakeUpIntervalSet                         = Key{ClassWakeUp, 0x04}
	WakeUpIntervalGet                         = Key{ClassWakeUp, 0x05}
	WakeUpIntervalReport                      = Key{ClassWakeUp, 0x06}
	WakeUpNotification                        = Key{ClassWakeUp, 0x07}
	WakeUpNoMoreInformation                   = Key{ClassWakeUp, 0x08}
	WakeUpIntervalCapabilitiesGet             = Key{ClassWakeUp, 0x09}
	WakeUpIntervalCapabilitiesReport          = Key{ClassWakeUp, 0x0a}
	AssociationSet                            = Key{ClassAssociation, 0x01}
	AssociationGet                            = Key{ClassAssociation, 0x02}
	AssociationReport                         = Key{ClassAssociation, 0x03}
	AssociationRemove                         = Key{ClassAssociation, 0x04}
	AssociationGroupingsGet                   = Key{ClassAssociation, 0x05}
	AssociationGroupingsReport                = Key{ClassAssociation, 0x06}
	VersionGet                                = Key{ClassVersion, 0x11}
	VersionReport                             = Key{ClassVersion, 0x12}
	VersionCommandClassGet                    = Key{ClassVersion, 0x13}
	VersionCommandClassReport                 = Key{ClassVersion, 0x14}
	IndicatorSet                              = Key{ClassIndicator, 0x01}
	IndicatorGet                              = Key{ClassIndicator, 0x02}
	IndicatorReport                           = Key{ClassIndicator, 0x03}
	TimeParametersSet                         = Key{ClassTimeParameters, 0x01}
	TimeParametersGet                         = Key{ClassTimeParameters, 0x02}
	TimeParametersReport                      = Key{ClassTimeParameters, 0x03}
	SecuritySupportedGet                      = Key{ClassSecurity, 0x02}
	SecuritySupportedReport                   = Key{ClassSecurity, 0x03}
	SecuritySchemeGet                         = Key{ClassSecurity, 0x04}
	SecuritySchemeReport                      = Key{ClassSecurity, 0x05}
	SecurityNetworkKeySet                     = Key{ClassSecurity, 0x06}
	SecurityNetworkKeyVerify                  = Key{ClassSecurity, 0x07}
	SecuritySchemeInherit                     = Key{ClassSecurity, 0x08}
	SecurityNonceGet                          = Key{ClassSecurity, 0x40}
	SecurityNonceReport                       = Key{ClassSecurity, 0x80}
	SecurityMessageEncap                      = Key{ClassSecurity, 0x81}
	SecurityMessageEncapNonceGet              = Key{ClassSecurity, 0xc1}
	SensorAlarmGet                            = Key{ClassSensorAlarm, 0x01}
	SensorAlarmReport                         = Key{ClassSensorAlarm, 0x02}
	SensorAlarmSupportedGet                   = Key{ClassSensorAlarm, 0x03}
	SensorAlarmSupportedReport                = Key{ClassSensorAlarm, 0x04}
	Security2NonceGet                         = Key{ClassSecurity2, 0x01}
	Security2NonceReport                      = Key{ClassSecurity2, 0x02}
	Security2MessageEncapsulation             = Key{ClassSecurity2, 0x03}
	Security2KexGet                           = Key{ClassSecurity2, 0x04}
	Security2KexReport                        = Key{ClassSecurity2, 0x05}
	Security2KexSet                           = Key{ClassSecurity2, 0x06}
	Security2KexFail                          = Key{ClassSecurity2, 0x07}
	Security2PublicKeyReport                  = Key{ClassSecurity2, 0x08}
	Security2NetworkKeyGet                    = Key{ClassSecurity2, 0x09}
	Security2NetworkKeyReport                 = Key{ClassSecurity2, 0x0a}
	Security2NetworkKeyVerify                 = Key{ClassSecurity2, 0x0b}
	Security2TransferEnd                      = Key{ClassSecurity2, 0x0c}
	Security2CommandsSupportedGet             = Key{ClassSecurity2, 0x0d}
	Security2CommandsSupportedReport          = Key{ClassSecurity2, 0x0e}
)

var classNames = map[Class]string{
	ClassNoOperation:                     "NoOperation",
	ClassBasic:                           "Basic",
	ClassControllerReplication:           "ControllerReplication",
	ClassApplicationStatus:               "ApplicationStatus",
	ClassSwitchBinary:                    "SwitchBinary",
	ClassSwitchMultilevel:                "SwitchMultilevel",
	ClassSwitchAll:                       "SwitchAll",
	ClassSwitchToggleBinary:              "SwitchToggleBinary",
	ClassSwitchToggleMultilevel:          "SwitchToggleMultilevel",
	ClassSceneActivation:                 "SceneActivation",
	ClassSceneActuatorConf:               "SceneActuatorConf",
	ClassSceneControllerConf:             "SceneControllerConf",
	ClassSensorBinary:                    "SensorBinary",
	ClassSensorMultilevel:                "SensorMultilevel",
	ClassMeter:                           "Meter",
	ClassColorSwitch:                     "ColorSwitch",
	ClassMeterPulse:                      "MeterPulse",
	ClassThermostatMode:                  "ThermostatMode",
	ClassThermostatOperatingState:        "ThermostatOperatingState",
	ClassThermostatSetpoint:              "ThermostatSetpoint",
	ClassThermostatFanMode:               "ThermostatFanMode",
	ClassThermostatFanState:              "ThermostatFanState",
	ClassClimateControlSchedule:          "ClimateControlSchedule",
	ClassThermostatSetBack:               "ThermostatSetBack",
	ClassDoorLockLogging:                 "DoorLockLogging",
	ClassScheduleEntryLock:               "ScheduleEntryLock",
	ClassBasicWindowCovering:             "BasicWindowCovering",
	ClassTransportService:                "TransportService",
	ClassCRC16Encap:                      "CRC16Encap",
	ClassAssociationGroupInformation:     "AssociationGroupInformation",
	ClassDeviceResetLocally:              "DeviceResetLocally",
	ClassCentralScene:                    "CentralScene",
	ClassZwavePlusInfo:                   "ZwavePlusInfo",
	ClassMultiChannel:                    "MultiChannel",
	ClassDoorLock:                        "DoorLock",
	ClassUserCode:                        "UserCode",
	ClassSupervision:                     "Supervision",
	ClassConfiguration:                   "Configuration",
	ClassAlarm:                           "Alarm",
	ClassManufacturerSpecific:            "ManufacturerSpecific",
	ClassPowerlevel:                      "Powerlevel",
	ClassProtection:                      "Protection",
	ClassLock:                            "Lock",
	ClassNodeNaming:                      "NodeNaming",
	ClassFirmware:                        "Firmware",
	ClassRemoteAssociationActivate:       "RemoteAssociationActivate",
	ClassBattery:                         "Battery",
	ClassClock:                           "Clock",
	ClassHail:                            "Hail",
	ClassWakeUp:                          "WakeUp",
	ClassAssociation:                     "Association",
	ClassVersion:                         "Version",
	ClassIndicator:                       "Indicator",
	ClassProprietary:                     "Proprietary",
	ClassLanguage:                        "Language",
	ClassTimeParameters:                  "TimeParameters",
	ClassMultiInstanceAssociation:        "MultiInstanceAssociation",
	ClassMultiCmd:                        "MultiCmd",
	ClassEnergyProduction:                "EnergyProduction",
	ClassManufacturerProprietary:         "ManufacturerProprietary",
	ClassScreenMd:                        "ScreenMd",
	ClassScreenAttributes:                "ScreenAttributes",
	ClassSimpleAvControl:                 "SimpleAvControl",
	ClassSecurity:                        "Security",
	ClassAssociationCommandConfiguration: "AssociationCommandConfiguration",
	ClassSensorAlarm:                     "SensorAlarm",
	ClassSilenceAlarm:                    "SilenceAlarm",
	ClassSecurity2:                       "Security2",
	ClassMark:                            "Mark",
}

var registry = []entry{
	{NoOperationSet, "NoOperation_Set", nil},
	{BasicSet, "Basic_Set", []Field{{KindByte, "level"}}},
	{BasicGet, "Basic_Get", nil},
	{BasicReport, "Basic_Report", []Field{{KindByte, "level"}}},
	{ControllerReplicationTransferGroup, "ControllerReplication_TransferGroup", []Field{{KindByte, "seq"}, {KindByte, "group"}, {KindByte, "node"}}},
	{ControllerReplicationTransferScene, "ControllerReplication_TransferScene", []Field{{KindByte, "seq"}, {KindByte, "scene"}, {KindByte, "node"}, {KindByte, "level"}}},
	{ApplicationStatusBusy, "ApplicationStatus_Busy", []Field{{KindByte, "status"}, {KindByte, "delay"}}},
	{ApplicationStatusRejectedRequest, "ApplicationStatus_RejectedRequest", []Field{{KindByte, "status"}}},
	{SwitchBinarySet, "SwitchBinary_Set", []Field{{KindByte, "level"}}},
	{SwitchBinaryGet, "SwitchBinary_Get", nil},
	{SwitchBinaryReport, "SwitchBinary_Report", []Field{{KindByte, "level"}}},
	{SwitchMultilevelSet, "SwitchMultilevel_Set", []Field{{KindByte, "level"}, {KindByte, "duration"}}},
	{SwitchMultilevelGet, "SwitchMultilevel_Get", nil},
	{SwitchMultilevelReport, "SwitchMultilevel_Report", []Field{{KindByte, "level"}}},
	{SwitchMultilevelStartLevelChange, "SwitchMultilevel_StartLevelChange", []Field{{KindByte, "mode"}, {KindList, "command"}}},
	{SwitchMultilevelStopLevelChange, "SwitchMultilevel_StopLevelChange", nil},
	{SwitchMultilevelSupportedGet, "SwitchMultilevel_SupportedGet", nil},
	{SwitchMultilevelSupportedReport, "SwitchMultilevel_SupportedReport", []Field{{KindByte, "type1"}, {KindByte, "type2"}}},
	{SwitchAllSet, "SwitchAll_Set", []Field{{KindByte, "mode"}}},
	{SwitchAllGet, "SwitchAll_Get", nil},
	{SwitchAllReport, "SwitchAll_Report", []Field{{KindByte, "mode"}}},
	{SwitchAllOn, "SwitchAll_On", nil},
	{SwitchAllOff, "SwitchAll_Off", nil},
	{SwitchToggleBinarySet, "SwitchToggleBinary_Set", nil},
	{SwitchToggleBinaryGet, "SwitchToggleBinary_Get", nil},
	{SwitchToggleBinaryReport, "SwitchToggleBinary_Report", []Field{{KindByte, "level"}}},
	{SceneActivationSet, "SceneActivation_Set", []Field{{KindByte, "scene"}, {KindByte, "delay"}}},
	{SceneActuatorConfSet, "SceneActuatorConf_Set", []Field{{KindByte, "scene"}, {KindByte, "delay"}, {KindByte, "extra"}, {KindByte, "level"}}},
	{SceneActuatorConfGet, "SceneActuatorConf_Get", []Field{{KindByte, "scene"}}},
	{SceneActuatorConfReport, "SceneActuatorConf_Report", []Field{{KindByte, "scene"}, {KindByte, "level"}, {KindByte, "delay"}}},
	{SceneControllerConfSet, "SceneControllerConf_Set", []Field{{KindByte, "delay"}, {KindByte, "group"}, {KindByte, "scene"}}},
	{SceneControllerConfGet, "SceneControllerConf_Get", []Field{{KindByte, "group"}}},
	{SceneControllerConfReport, "SceneControllerConf_Report", []Field{{KindByte, "delay"}, {KindByte, "group"}, {KindByte, "scene"}}},
	{SensorBinaryGet, "SensorBinary_Get", nil},
	{SensorBinaryReport, "SensorBinary_Report", []Field{{KindByte, "level"}}},
	{SensorMultilevelSupportedGet, "SensorMultilevel_SupportedGet", []Field{{KindOptionalByte, "sensor"}}},
	{SensorMultilevelSupportedReport, "SensorMultilevel_SupportedReport", []Field{{KindBits, "bits"}}},
	{SensorMultilevelGet, "SensorMultilevel_Get", []Field{{KindOptionalByte, "sensor"}}},
	{SensorMultilevelReport, "SensorMultilevel_Report", []Field{{KindByte, "type"}, {KindReading, "value"}}},
	{MeterGet, "Meter_Get", []Field{{KindOptionalByte, "scale"}}},
	{MeterReport, "Meter_Report", []Field{{KindMeter, "value"}}},
	{MeterSupportedGet, "Meter_SupportedGet", nil},
	{MeterSupportedReport, "Meter_SupportedReport", []Field{{KindByte, "type"}, {KindByte, "scale"}}},
	{MeterReset, "Meter_Reset", nil},
	{ColorSwitchSupportedGet, "ColorSwitch_SupportedGet", nil},
	{ColorSwitchSupportedReport, "ColorSwitch_SupportedReport", []Field{{KindBits, "bits"}}},
	{ColorSwitchGet, "ColorSwitch_Get", []Field{{KindByte, "group"}}},
	{ColorSwitchReport, "ColorSwitch_Report", []Field{{KindByte, "group"}, {KindByte, "level"}}},
	{ThermostatModeSet, "ThermostatMode_Set", []Field{{KindByte, "thermo"}}},
	{ThermostatModeGet, "ThermostatMode_Get", nil},
	{ThermostatModeReport, "ThermostatMode_Report", []Field{{KindByte, "thermo"}}},
	{ThermostatModeSupportedGet, "ThermostatMode_SupportedGet", nil},
	{ThermostatModeSupportedReport, "ThermostatMode_SupportedReport", []Field{{KindBits, "bits"}}},
	{ThermostatSetpointGet, "ThermostatSetpoint_Get", []Field{{KindByte, "thermo"}}},
	{ThermostatSetpointReport, "ThermostatSetpoint_Report", []Field{{KindByte, "thermo"}, {KindReading, "value"}}},
	{ThermostatSetpointSupportedGet, "ThermostatSetpoint_SupportedGet", nil},
	{ThermostatSetpointSupportedReport, "ThermostatSetpoint_SupportedReport", []Field{{KindBits, "bits"}}},
	{DoorLockLoggingSupportedGet, "DoorLockLogging_SupportedGet", nil},
	{DoorLockLoggingSupportedReport, "DoorLockLogging_SupportedReport", []Field{{KindByte, "count"}}},
	{DoorLockLoggingGet, "DoorLockLogging_Get", []Field{{KindByte, "count"}}},
	{DoorLockLoggingReport, "DoorLockLogging_Report", []Field{{KindByte, "count"}, {KindDate, "date"}, {KindByte, "type"}, {KindByte, "user"}, {KindString, "code"}}},
	{AssociationGroupInformationNameGet, "AssociationGroupInformation_NameGet", []Field{{KindByte, "group"}}},
	{AssociationGroupInformationNameReport, "AssociationGroupInformation_NameReport", []Field{{KindByte, "group"}, {KindString, "name"}}},
	{AssociationGroupInformationInfoGet, "AssociationGroupInformation_InfoGet", []Field{{KindByte, "mode"}, {KindByte, "group"}}},
	{AssociationGroupInformationInfoReport, "AssociationGroupInformation_InfoReport", []Field{{KindByte, "mode"}, {KindGroups, "groups"}}},
	{AssociationGroupInformationListGet, "AssociationGroupInformation_ListGet", []Field{{KindByte, "mode"}, {KindByte, "group"}}},
	{AssociationGroupInformationListReport, "AssociationGroupInformation_ListReport", []Field{{KindByte, "group"}, {KindString, "commands"}}},
	{CentralSceneSupportedGet, "CentralScene_SupportedGet", nil},
	{CentralSceneSupportedReport, "CentralScene_SupportedReport", []Field{{KindByte, "count"}, {KindList, "extra"}}},
	{CentralSceneNotification, "CentralScene_Notification", []Field{{KindByte, "count"}, {KindByte, "mode"}, {KindByte, "scene"}}},
	{ZwavePlusInfoGet, "ZwavePlusInfo_Get", nil},
	{ZwavePlusInfoReport, "ZwavePlusInfo_Report", []Field{{KindByte, "version"}, {KindByte, "role"}, {KindByte, "type"}, {KindWord, "icon"}, {KindWord, "icon2"}}},
	{MultiChannelGet, "MultiChannel_Get", []Field{{KindByte, "mode"}}},
	{MultiChannelReport, "MultiChannel_Report", []Field{{KindByte, "mode"}, {KindByte, "count"}}},
	{MultiChannelEncap, "MultiChannel_Encap", []Field{{KindByte, "mode"}, {KindList, "command"}}},
	{MultiChannelEndPointGet, "MultiChannel_EndPointGet", nil},
	{MultiChannelEndPointReport, "MultiChannel_EndPointReport", []Field{{KindByte, "mode"}, {KindByte, "count"}}},
	{MultiChannelCapabilityGet, "MultiChannel_CapabilityGet", []Field{{KindByte, "endpoint"}}},
	{MultiChannelCapabilityReport, "MultiChannel_CapabilityReport", []Field{{KindByte, "endpoint"}, {KindByte, "generic"}, {KindByte, "specific"}, {KindList, "classes"}}},
	{MultiChannelChannelEndPointFind, "MultiChannel_ChannelEndPointFind", nil},
	{MultiChannelChannelEndPointFindReport, "MultiChannel_ChannelEndPointFindReport", nil},
	{MultiChannelChannelEncap, "MultiChannel_ChannelEncap", []Field{{KindByte, "src"}, {KindByte, "dst"}, {KindCommand, "command"}}},
	{DoorLockSet, "DoorLock_Set", []Field{{KindByte, "status"}}},
	{DoorLockGet, "DoorLock_Get", nil},
	{DoorLockReport, "DoorLock_Report", []Field{{KindByte, "status"}}},
	{DoorLockConfigurationSet, "DoorLock_ConfigurationSet", []Field{{KindByte, "timeout"}, {KindByte, "control"}, {KindByte, "min"}, {KindByte, "sec"}}},
	{DoorLockConfigurationGet, "DoorLock_ConfigurationGet", nil},
	{DoorLockConfigurationReport, "DoorLock_ConfigurationReport", []Field{{KindByte, "timeout"}, {KindByte, "control"}, {KindByte, "min"}, {KindByte, "sec"}}},
	{UserCodeSet, "UserCode_Set", []Field{{KindByte, "user"}, {KindByte, "status"}, {KindList, "code"}}},
	{UserCodeGet, "UserCode_Get", []Field{{KindByte, "user"}}},
	{UserCodeReport, "UserCode_Report", []Field{{KindByte, "user"}, {KindByte, "status"}, {KindList, "code"}}},
	{UserCodeNumberGet, "UserCode_NumberGet", nil},
	{UserCodeNumberReport, "UserCode_NumberReport", []Field{{KindByte, "count"}}},
	{ConfigurationSet, "Configuration_Set", []Field{{KindByte, "parameter"}, {KindValue, "value"}}},
	{ConfigurationGet, "Configuration_Get", []Field{{KindByte, "parameter"}}},
	{ConfigurationReport, "Configuration_Report", []Field{{KindByte, "parameter"}, {KindValue, "value"}}},
	{AlarmGet, "Alarm_Get", nil},
	{AlarmReport, "Alarm_Report", []Field{{KindByte, "type"}, {KindByte, "level"}}},
	{AlarmSet, "Alarm_Set", []Field{{KindByte, "type"}, {KindByte, "status"}}},
	{AlarmSupportedGet, "Alarm_SupportedGet", nil},
	{AlarmSupportedReport, "Alarm_SupportedReport", nil},
	{ManufacturerSpecificGet, "ManufacturerSpecific_Get", nil},
	{ManufacturerSpecificReport, "ManufacturerSpecific_Report", []Field{{KindWord, "manufacturer"}, {KindWord, "type"}, {KindWord, "product"}}},
	{ManufacturerSpecificDeviceSpecificGet, "ManufacturerSpecific_DeviceSpecificGet", []Field{{KindByte, "type"}}},
	{ManufacturerSpecificDeviceSpecificReport, "ManufacturerSpecific_DeviceSpecificReport", []Field{{KindByte, "type"}, {KindText, "bytes"}}},
	{PowerlevelSet, "Powerlevel_Set", []Field{{KindByte, "level"}, {KindByte, "timeout"}}},
	{PowerlevelGet, "Powerlevel_Get", nil},
	{PowerlevelReport, "Powerlevel_Report", []Field{{KindByte, "level"}, {KindByte, "timeout"}}},
	{PowerlevelTestNodeSet, "Powerlevel_TestNodeSet", []Field{{KindByte, "node"}, {KindByte, "level"}, {KindWord, "count"}}},
	{PowerlevelTestNodeGet, "Powerlevel_TestNodeGet", nil},
	{PowerlevelTestNodeGetReport, "Powerlevel_TestNodeGetReport", []Field{{KindByte, "node"}, {KindByte, "status"}, {KindByte, "level"}, {KindWord, "count"}}},
	{ProtectionSet, "Protection_Set", []Field{{KindByte, "protection"}}},
	{ProtectionGet, "Protection_Get", nil},
	{ProtectionReport, "Protection_Report", []Field{{KindByte, "protection"}}},
	{LockSet, "Lock_Set", []Field{{KindByte, "state"}}},
	{LockGet, "Lock_Get", nil},
	{LockReport, "Lock_Report", []Field{{KindByte, "state"}}},
	{NodeNamingSet, "NodeNaming_Set", []Field{{KindName, "name"}}},
	{NodeNamingGet, "NodeNaming_Get", nil},
	{NodeNamingReport, "NodeNaming_Report", []Field{{KindName, "name"}}},
	{NodeNamingLocationSet, "NodeNaming_LocationSet", []Field{{KindName, "name"}}},
	{NodeNamingLocationGet, "NodeNaming_LocationGet", nil},
	{NodeNamingLocationReport, "NodeNaming_LocationReport", []Field{{KindName, "name"}}},
	{FirmwareMetadataGet, "Firmware_MetadataGet", nil},
	{FirmwareMetadataReport, "Firmware_MetadataReport", []Field{{KindWord, "manufacturer"}, {KindWord, "id"}, {KindWord, "checksum"}}},
	{BatteryGet, "Battery_Get", nil},
	{BatteryReport, "Battery_Report", []Field{{KindByte, "level"}}},
	{ClockSet, "Clock_Set", []Field{{KindByte, "dayhour"}, {KindByte, "minute"}}},
	{ClockGet, "Clock_Get", nil},
	{ClockReport, "Clock_Report", []Field{{KindWord, "dhm"}}},
	{HailHail, "Hail_Hail", nil},
	{WakeUpIntervalSet, "WakeUp_IntervalSet", []Field{{KindInt24, "seconds"}, {KindByte, "node"}}},
	{WakeUpIntervalGet, "WakeUp_IntervalGet", nil},
	{WakeUpIntervalReport, "WakeUp_IntervalReport", []Field{{KindInt24, "seconds"}, {KindByte, "node"}}},
	{WakeUpNotification, "WakeUp_Notification", nil},
	{WakeUpNoMoreInformation, "WakeUp_NoMoreInformation", nil},
	{WakeUpIntervalCapabilitiesGet, "WakeUp_IntervalCapabilitiesGet", nil},
	{WakeUpIntervalCapabilitiesReport, "WakeUp_IntervalCapabilitiesReport", []Field{{KindInt24, "min"}, {KindInt24, "max"}, {KindInt24, "default"}, {KindInt24, "step"}}},
	{AssociationSet, "Association_Set", []Field{{KindByte, "group"}, {KindList, "nodes"}}},
	{AssociationGet, "Association_Get", []Field{{KindByte, "group"}}},
	{AssociationReport, "Association_Report", []Field{{KindByte, "group"}, {KindByte, "count"}, {KindByte, "seq"}, {KindList, "nodes"}}},
	{AssociationRemove, "Association_Remove", []Field{{KindByte, "group"}, {KindList, "nodes"}}},
	{AssociationGroupingsGet, "Association_GroupingsGet", nil},
	{AssociationGroupingsReport, "Association_GroupingsReport", []Field{{KindByte, "count"}}},
	{VersionGet, "Version_Get", nil},
	{VersionReport, "Version_Report", []Field{{KindByte, "library"}, {KindWord, "protocol"}, {KindWord, "firmware"}, {KindOptionalByte, "hardware"}, {KindTargets, "targets"}}},
	{VersionCommandClassGet, "Version_CommandClassGet", []Field{{KindByte, "class"}}},
	{VersionCommandClassReport, "Version_CommandClassReport", []Field{{KindByte, "class"}, {KindByte, "version"}}},
	{IndicatorSet, "Indicator_Set", []Field{{KindByte, "status"}}},
	{IndicatorGet, "Indicator_Get", nil},
	{IndicatorReport, "Indicator_Report", []Field{{KindByte, "status"}}},
	{TimeParametersSet, "TimeParameters_Set", []Field{{KindDate, "date"}}},
	{TimeParametersGet, "TimeParameters_Get", nil},
	{TimeParametersReport, "TimeParameters_Report", []Field{{KindDate, "date"}}},
	{SecuritySupportedGet, "Security_SupportedGet", nil},
	{SecuritySupportedReport, "Security_SupportedReport", []Field{{KindByte, "mode"}, {KindList, "command"}}},
	{SecuritySchemeGet, "Security_SchemeGet", []Field{{KindByte, "mode"}}},
	{SecuritySchemeReport, "Security_SchemeReport", []Field{{KindByte, "mode"}}},
	{SecurityNetworkKeySet, "Security_NetworkKeySet", []Field{{KindKey, "key"}}},
	{SecurityNetworkKeyVerify, "Security_NetworkKeyVerify", nil},
	{SecuritySchemeInherit, "Security_SchemeInherit", nil},
	{SecurityNonceGet, "Security_NonceGet", nil},
	{SecurityNonceReport, "Security_NonceReport", []Field{{KindNonce, "nonce"}}},
	{SecurityMessageEncap, "Security_MessageEncap", []Field{{KindList, "data"}}},
	{SecurityMessageEncapNonceGet, "Security_MessageEncapNonceGet", []Field{{KindList, "data"}}},
	{SensorAlarmGet, "SensorAlarm_Get", []Field{{KindOptionalByte, "alarm"}}},
	{SensorAlarmReport, "SensorAlarm_Report", []Field{{KindByte, "node"}, {KindByte, "alarm"}}},
	{SensorAlarmSupportedGet, "SensorAlarm_SupportedGet", nil},
	{SensorAlarmSupportedReport, "SensorAlarm_SupportedReport", []Field{{KindSizedBits, "bits"}}},
	{Security2NonceGet, "Security2_NonceGet", []Field{{KindByte, "seq"}}},
	{Security2NonceReport, "Security2_NonceReport", []Field{{KindByte, "seq"}, {KindByte, "mode"}, {KindList, "nonce"}}},
	{Security2MessageEncapsulation, "Security2_MessageEncapsulation", []Field{{KindByte, "seq"}, {KindExtensions, "extensions"}}},
	{Security2KexGet, "Security2_KexGet", nil},
	{Security2KexReport, "Security2_KexReport", []Field{{KindByte, "mode"}, {KindByte, "schemes"}, {KindByte, "profiles"}, {KindByte, "keys"}}},
	{Security2KexSet, "Security2_KexSet", []Field{{KindByte, "mode"}, {KindByte, "schemes"}, {KindByte, "profiles"}, {KindByte, "keys"}}},
	{Security2KexFail, "Security2_KexFail", []Field{{KindByte, "type"}}},
	{Security2PublicKeyReport, "Security2_PublicKeyReport", []Field{{KindByte, "mode"}, {KindList, "key"}}},
	{Security2NetworkKeyGet, "Security2_NetworkKeyGet", []Field{{KindByte, "key"}}},
	{Security2NetworkKeyReport, "Security2_NetworkKeyReport", []Field{{KindByte, "grant"}, {KindKey, "key"}}},
	{Security2NetworkKeyVerify, "Security2_NetworkKeyVerify", nil},
	{Security2TransferEnd, "Security2_TransferEnd", []Field{{KindByte, "mode"}}},
	{Security2CommandsSupportedGet, "Security2_CommandsSupportedGet", nil},
	{Security2CommandsSupportedReport, "Security2_CommandsSupportedReport", []Field{{KindList, "classes"}}},
}
